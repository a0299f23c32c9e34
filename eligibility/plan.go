package eligibility

// Причины отказа при массовой привязке
const (
	RejectUnknown     = "card_not_found"
	RejectIneligible  = "not_eligible"
	RejectDuplicateID = "duplicate_id"
)

// Rejection карта, которую не удалось привязать
type Rejection struct {
	CardID uint   `json:"card_id"`
	Reason string `json:"reason"`
}

// Plan результат проверки пакета карт перед привязкой
type Plan struct {
	Accepted       []uint
	Rejected       []Rejection
	TotalRequested int
}

// PlanAssignment повторно проверяет запрошенные карты тем же правилом, что и клиент.
// Порядок принятых карт совпадает с порядком запроса.
func PlanAssignment(cards []Card, casino Casino, requested []uint) Plan {
	byID := make(map[uint]Card, len(cards))
	for _, c := range cards {
		byID[c.ID] = c
	}

	plan := Plan{TotalRequested: len(requested)}
	seen := make(map[uint]bool, len(requested))
	for _, id := range requested {
		if seen[id] {
			plan.Rejected = append(plan.Rejected, Rejection{CardID: id, Reason: RejectDuplicateID})
			continue
		}
		seen[id] = true

		card, ok := byID[id]
		if !ok {
			plan.Rejected = append(plan.Rejected, Rejection{CardID: id, Reason: RejectUnknown})
			continue
		}
		if !IsEligible(card, &casino) {
			plan.Rejected = append(plan.Rejected, Rejection{CardID: id, Reason: RejectIneligible})
			continue
		}
		plan.Accepted = append(plan.Accepted, id)
	}
	return plan
}

// Partial сообщает о частичном успехе
func (p Plan) Partial() bool {
	return len(p.Accepted) > 0 && len(p.Accepted) < p.TotalRequested
}
