package common

// Activity categories a session can be booked under. The wire and both
// stores carry them as these exact strings.
const (
	ActivityTypeResearch       = "Pesquisa e Desenvolvimento"
	ActivityTypeFactorySupport = "Atendimento na Fábrica"
	ActivityTypeDocumentation  = "Documentação"
	ActivityTypeJigs           = "Confecção de Gabaritos"
	ActivityTypeRegistration   = "Cadastro"
	ActivityTypeMeetings       = "Reuniões"
)

// ActivityTypeNames lists the categories in display order.
var ActivityTypeNames = []string{
	ActivityTypeResearch,
	ActivityTypeFactorySupport,
	ActivityTypeDocumentation,
	ActivityTypeJigs,
	ActivityTypeRegistration,
	ActivityTypeMeetings,
}

// IsActivityType reports whether s is exactly one of ActivityTypeNames.
func IsActivityType(s string) bool {
	for _, v := range ActivityTypeNames {
		if v == s {
			return true
		}
	}
	return false
}
