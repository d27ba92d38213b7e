package models

import "strings"

// PaymentType classifies what a payment covers.
type PaymentType string

const (
	PaymentTypeTuition      PaymentType = "COLEGIATURA"
	PaymentTypeEnrollment   PaymentType = "INSCRIPCION"
	PaymentTypeReEnrollment PaymentType = "REINSCRIPCION"
	PaymentTypeExam         PaymentType = "EXAMEN"
	PaymentTypeLab          PaymentType = "LABORATORIO"
	PaymentTypeLibrary      PaymentType = "BIBLIOTECA"
	PaymentTypeTransport    PaymentType = "TRANSPORTE"
	PaymentTypeCafeteria    PaymentType = "CAFETERIA"
	PaymentTypeUniform      PaymentType = "UNIFORME"
	PaymentTypeBooks        PaymentType = "LIBROS"
	PaymentTypeInsurance    PaymentType = "SEGURO"
	PaymentTypeIDCard       PaymentType = "CREDENCIAL"
	PaymentTypeCertificate  PaymentType = "CONSTANCIA"
	PaymentTypeDiploma      PaymentType = "DIPLOMA"
	PaymentTypeOther        PaymentType = "OTRO"
)

type paymentTypeInfo struct {
	displayName string
	description string
	color       string
}

var paymentTypeTable = map[PaymentType]paymentTypeInfo{
	PaymentTypeTuition:      {"Colegiatura", "monthly tuition", "primary"},
	PaymentTypeEnrollment:   {"Inscripción", "first-time enrollment fee", "success"},
	PaymentTypeReEnrollment: {"Reinscripción", "yearly re-enrollment fee", "success"},
	PaymentTypeExam:         {"Examen", "examination fee", "info"},
	PaymentTypeLab:          {"Laboratorio", "laboratory materials fee", "info"},
	PaymentTypeLibrary:      {"Biblioteca", "library services fee", "info"},
	PaymentTypeTransport:    {"Transporte", "school transport service", "warning"},
	PaymentTypeCafeteria:    {"Cafetería", "cafeteria service", "warning"},
	PaymentTypeUniform:      {"Uniforme", "school uniform purchase", "secondary"},
	PaymentTypeBooks:        {"Libros", "textbook purchase", "secondary"},
	PaymentTypeInsurance:    {"Seguro", "school accident insurance", "dark"},
	PaymentTypeIDCard:       {"Credencial", "student id card issuance", "muted"},
	PaymentTypeCertificate:  {"Constancia", "study certificate issuance", "muted"},
	PaymentTypeDiploma:      {"Diploma", "diploma issuance", "muted"},
	PaymentTypeOther:        {"Otro", "miscellaneous charge", "light"},
}

var paymentTypeOrder = []PaymentType{
	PaymentTypeTuition, PaymentTypeEnrollment, PaymentTypeReEnrollment,
	PaymentTypeExam, PaymentTypeLab, PaymentTypeLibrary, PaymentTypeTransport,
	PaymentTypeCafeteria, PaymentTypeUniform, PaymentTypeBooks,
	PaymentTypeInsurance, PaymentTypeIDCard, PaymentTypeCertificate,
	PaymentTypeDiploma, PaymentTypeOther,
}

// Valid returns true when the type is a supported value.
func (t PaymentType) Valid() bool {
	_, ok := paymentTypeTable[t]
	return ok
}

// DisplayName returns the user-facing label.
func (t PaymentType) DisplayName() string {
	return paymentTypeTable[t].displayName
}

// Description returns the short explanation of the type.
func (t PaymentType) Description() string {
	return paymentTypeTable[t].description
}

// Color returns the UI color token associated with the type.
func (t PaymentType) Color() string {
	return paymentTypeTable[t].color
}

// Recurring reports whether the charge repeats every period.
func (t PaymentType) Recurring() bool {
	switch t {
	case PaymentTypeTuition, PaymentTypeTransport, PaymentTypeCafeteria:
		return true
	default:
		return false
	}
}

// OneTime reports whether the charge is collected at most once per school year.
func (t PaymentType) OneTime() bool {
	switch t {
	case PaymentTypeEnrollment, PaymentTypeReEnrollment, PaymentTypeDiploma, PaymentTypeCertificate, PaymentTypeIDCard:
		return true
	default:
		return false
	}
}

// PaymentTypes returns every supported type in display order.
func PaymentTypes() []PaymentType {
	out := make([]PaymentType, len(paymentTypeOrder))
	copy(out, paymentTypeOrder)
	return out
}

// ParsePaymentType resolves a stored literal, falling back from the tag to a
// case-insensitive display-name match and finally to the provided default.
func ParsePaymentType(raw string, fallback PaymentType) PaymentType {
	if t, ok := resolvePaymentType(raw); ok {
		return t
	}
	return fallback
}

// ResolvePaymentType is the strict variant of ParsePaymentType.
func ResolvePaymentType(raw string) (PaymentType, bool) {
	return resolvePaymentType(raw)
}

func resolvePaymentType(raw string) (PaymentType, bool) {
	trimmed := strings.TrimSpace(raw)
	if t := PaymentType(trimmed); t.Valid() {
		return t, true
	}
	for _, t := range paymentTypeOrder {
		if strings.EqualFold(trimmed, t.DisplayName()) {
			return t, true
		}
	}
	return "", false
}
