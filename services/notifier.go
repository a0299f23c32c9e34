package services

import (
	"backoffice/models"
	"backoffice/utils"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Виды событий
const (
	EventCardsAssigned      = "cards.assigned"
	EventCardAssignedJunior = "card.assigned_junior"
	EventWithdrawalCreated  = "withdrawal.created"
	EventWithdrawalStatus   = "withdrawal.status"
	EventWithdrawalOverdue  = "withdrawal.overdue"
	EventTaskAssigned       = "task.assigned"
	EventTaskStatus         = "task.status"
	EventBalanceChanged     = "account.balance"
)

// Recipient получатель уведомления
type Recipient struct {
	UserID uint
	Email  string
}

// Event событие, которое рассылается подписчикам
type Event struct {
	ID         string
	Kind       string
	Title      string
	Body       string
	Recipients []Recipient
	// Roles раскрываются в получателей через RecipientDirectory
	Roles     []models.Role
	CreatedAt time.Time
}

// Subscriber получает события от Notifier
type Subscriber interface {
	Name() string
	Notify(ctx context.Context, event Event) error
}

// SubscriberFunc адаптер функции к Subscriber
type SubscriberFunc struct {
	ID string
	Fn func(ctx context.Context, event Event) error
}

func (f SubscriberFunc) Name() string { return f.ID }

func (f SubscriberFunc) Notify(ctx context.Context, event Event) error { return f.Fn(ctx, event) }

// RecipientDirectory находит получателей по ролям
type RecipientDirectory interface {
	Recipients(roles ...models.Role) ([]Recipient, error)
}

// recipientLookup дополняет получателя адресом, если directory это умеет
type recipientLookup interface {
	RecipientByID(id uint) (Recipient, error)
}

// Notifier рассылает события всем подписчикам.
// Ошибка подписчика не прерывает рассылку и не возвращается вызывающему: она только логируется.
type Notifier struct {
	mu        sync.RWMutex
	subs      map[int]Subscriber
	nextID    int
	directory RecipientDirectory
	now       func() time.Time
}

// NewNotifier создает новый экземпляр Notifier
func NewNotifier(directory RecipientDirectory) *Notifier {
	return &Notifier{
		subs:      make(map[int]Subscriber),
		directory: directory,
		now:       time.Now,
	}
}

// Subscribe добавляет подписчика и возвращает функцию отписки
func (n *Notifier) Subscribe(s Subscriber) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.subs[id] = s

	return func() {
		n.mu.Lock()
		delete(n.subs, id)
		n.mu.Unlock()
	}
}

// Publish заполняет идентификатор события, раскрывает роли и передает событие подписчикам
// в порядке подписки. Возвращает итоговое событие.
func (n *Notifier) Publish(ctx context.Context, event Event) Event {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = n.now()
	}
	event.Recipients = n.resolve(event)

	n.mu.RLock()
	ids := make([]int, 0, len(n.subs))
	for id := range n.subs {
		ids = append(ids, id)
	}
	subs := make([]Subscriber, 0, len(ids))
	sort.Ints(ids)
	for _, id := range ids {
		subs = append(subs, n.subs[id])
	}
	n.mu.RUnlock()

	for _, s := range subs {
		if err := s.Notify(ctx, event); err != nil {
			utils.LogError("подписчик %s не обработал событие %s (%s): %v", s.Name(), event.ID, event.Kind, err)
		}
	}
	return event
}

// resolve объединяет явных получателей и получателей по ролям без повторов
func (n *Notifier) resolve(event Event) []Recipient {
	seen := make(map[uint]bool, len(event.Recipients))
	out := make([]Recipient, 0, len(event.Recipients))
	add := func(r Recipient) {
		if r.UserID == 0 || seen[r.UserID] {
			return
		}
		seen[r.UserID] = true
		out = append(out, r)
	}
	lookup, canLookup := n.directory.(recipientLookup)
	for _, r := range event.Recipients {
		if r.Email == "" && canLookup && r.UserID != 0 {
			if full, err := lookup.RecipientByID(r.UserID); err == nil {
				r = full
			}
		}
		add(r)
	}
	if len(event.Roles) > 0 && n.directory != nil {
		byRole, err := n.directory.Recipients(event.Roles...)
		if err != nil {
			utils.LogError("не удалось получить получателей для %s: %v", event.Kind, err)
		}
		for _, r := range byRole {
			add(r)
		}
	}
	return out
}

// MetricsSubscriber считает разосланные уведомления
type MetricsSubscriber struct {
	metrics *utils.Metrics
}

// NewMetricsSubscriber создает подписчика метрик
func NewMetricsSubscriber(m *utils.Metrics) *MetricsSubscriber {
	return &MetricsSubscriber{metrics: m}
}

func (s *MetricsSubscriber) Name() string { return "metrics" }

func (s *MetricsSubscriber) Notify(_ context.Context, event Event) error {
	for range event.Recipients {
		s.metrics.RecordNotification()
	}
	return nil
}
