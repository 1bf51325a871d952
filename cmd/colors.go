package cmd

import (
	"github.com/fatih/color"

	"github.com/modnislabs/linkverify/internal/verify"
)

var (
	colorSuccess = color.New(color.FgGreen).SprintFunc()
	colorInfo    = color.New(color.FgCyan).SprintFunc()
	colorWarn    = color.New(color.FgYellow).SprintFunc()
	colorError   = color.New(color.FgRed).SprintFunc()
)

func formatRiskWithColor(risk verify.RiskLevel) string {
	switch risk {
	case verify.RiskSafe:
		return colorSuccess(string(risk))
	case verify.RiskLow:
		return colorInfo(string(risk))
	case verify.RiskMedium:
		return colorWarn(string(risk))
	case verify.RiskHigh, verify.RiskCritical:
		return colorError(string(risk))
	default:
		return string(risk)
	}
}
