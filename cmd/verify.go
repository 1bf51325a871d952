package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/modnislabs/linkverify/internal/verify"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <url>",
	Short: "Run the full safety pipeline against a single URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rawURL := args[0]

		skipDNS, _ := cmd.Flags().GetBool("skip-dns")
		skipSSL, _ := cmd.Flags().GetBool("skip-ssl")
		skipPhishing, _ := cmd.Flags().GetBool("skip-phishing")
		skipMalware, _ := cmd.Flags().GetBool("skip-malware")
		noCache, _ := cmd.Flags().GetBool("no-cache")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		asJSON, _ := cmd.Flags().GetBool("json")

		verifier := buildVerifier(logger.Desugar())
		verdict := verifier.Verify(cmd.Context(), rawURL, verify.Options{
			SkipCache:    noCache,
			SkipDNS:      skipDNS,
			SkipSSL:      skipSSL,
			SkipPhishing: skipPhishing,
			SkipMalware:  skipMalware,
			Timeout:      timeout,
		})

		if asJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(verdict)
		}

		printVerdict(verdict)
		return nil
	},
}

func printVerdict(v verify.Verdict) {
	fmt.Printf("URL:        %s\n", v.URL)
	fmt.Printf("Risk:       %s (score %d/100)\n", formatRiskWithColor(v.OverallRisk), v.RiskScore)
	if v.IsVerified {
		fmt.Printf("Verified:   %s\n", colorSuccess("yes"))
	} else {
		fmt.Printf("Verified:   %s\n", colorError("no"))
	}
	if v.Metadata.Cached {
		fmt.Printf("Source:     %s\n", colorInfo("cache"))
	}
	fmt.Printf("Checked in: %dms\n", v.Metadata.TotalCheckTime)

	printCheckLine("URL structure", v.Checks.URLValidation.IsValid, v.Checks.URLValidation.Errors, v.Checks.URLValidation.Warnings)
	printCheckLine("DNS", v.Checks.DNSCheck.IsValid, v.Checks.DNSCheck.Errors, v.Checks.DNSCheck.Warnings)
	printCheckLine("TLS", v.Checks.SSLCheck.IsValid, v.Checks.SSLCheck.Errors, v.Checks.SSLCheck.Warnings)
	printCheckLine(fmt.Sprintf("Phishing (%d%%)", v.Checks.PhishingCheck.SuspicionScore),
		!v.Checks.PhishingCheck.IsPhishing, v.Checks.PhishingCheck.Reasons, v.Checks.PhishingCheck.Warnings)
	printCheckLine("Threat feeds", v.Checks.MalwareCheck.IsSafe, v.Checks.MalwareCheck.Errors, v.Checks.MalwareCheck.Warnings)

	if len(v.Summary.CriticalIssues) > 0 {
		fmt.Printf("\n%s\n", colorError("Critical issues:"))
		for _, issue := range v.Summary.CriticalIssues {
			fmt.Printf("  - %s\n", issue)
		}
	}

	fmt.Printf("\nRecommendations:\n")
	for _, rec := range v.Summary.Recommendations {
		fmt.Printf("  - %s\n", rec)
	}
}

func printCheckLine(name string, ok bool, errs, warnings []string) {
	status := colorSuccess("ok")
	if !ok {
		status = colorError("fail")
	} else if len(warnings) > 0 {
		status = colorWarn("warn")
	}
	fmt.Printf("  %-18s %s\n", name, status)
	for _, e := range errs {
		fmt.Printf("    %s %s\n", colorError("✗"), e)
	}
	for _, w := range warnings {
		fmt.Printf("    %s %s\n", colorWarn("!"), w)
	}
}

func init() {
	verifyCmd.Flags().Bool("skip-dns", false, "Skip DNS resolution checks")
	verifyCmd.Flags().Bool("skip-ssl", false, "Skip TLS certificate checks")
	verifyCmd.Flags().Bool("skip-phishing", false, "Skip phishing heuristics")
	verifyCmd.Flags().Bool("skip-malware", false, "Skip threat feed lookups")
	verifyCmd.Flags().Bool("no-cache", false, "Bypass the verdict cache")
	verifyCmd.Flags().Duration("timeout", 10*time.Second, "Overall timeout for the verification")
	verifyCmd.Flags().Bool("json", false, "Emit the raw verdict as JSON")
}
