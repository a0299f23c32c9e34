package presentation

import "strings"

// MaskPAN оставляет первые 6 и последние 4 цифры номера карты
func MaskPAN(pan string) string {
	if len(pan) < 10 {
		return strings.Repeat("*", len(pan))
	}
	return pan[:6] + strings.Repeat("*", len(pan)-10) + pan[len(pan)-4:]
}

// MaskEmail оставляет первую букву локальной части и домен
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}

// MaskSecret полностью скрывает секрет
func MaskSecret(string) string {
	return "••••••••"
}

// SensitiveField значение, которое показывается маской, пока его не раскрыли
type SensitiveField struct {
	plain    string
	masked   string
	revealed bool
}

// NewSensitiveField создает поле с маской по функции mask
func NewSensitiveField(plain string, mask func(string) string) *SensitiveField {
	return &SensitiveField{plain: plain, masked: mask(plain)}
}

// Toggle переключает режим показа
func (f *SensitiveField) Toggle() {
	f.revealed = !f.revealed
}

// Revealed сообщает, раскрыто ли значение
func (f *SensitiveField) Revealed() bool {
	return f.revealed
}

// String возвращает отображаемое значение
func (f *SensitiveField) String() string {
	if f.revealed {
		return f.plain
	}
	return f.masked
}
