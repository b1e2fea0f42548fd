package compliance

import (
	"fmt"
	"strconv"
)

// AlertMessage returns the user-facing Arabic message for an alert level.
// CRITICAL and WARNING messages name the remaining shortfall.
func AlertMessage(alertLevel string, shortfall float64) string {
	switch alertLevel {
	case AlertZeroBalance:
		return "تنبيه حرج: لا يوجد رصيد في الحساب. يجب السداد فوراً."
	case AlertCritical:
		return fmt.Sprintf("تنبيه حرج: الرصيد أقل من 1000 ريال. المطلوب %s ريال للوصول للحد الأدنى.", formatAmount(shortfall))
	case AlertWarning:
		return fmt.Sprintf("تنبيه: الرصيد أقل من الحد الأدنى. المطلوب %s ريال لإكمال 3000 ريال.", formatAmount(shortfall))
	case AlertSufficient:
		return "الرصيد كافي ويحقق الحد الأدنى المطلوب ✅"
	default:
		return ""
	}
}

// formatAmount renders whole amounts without a decimal point.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
