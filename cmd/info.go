package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/modnislabs/linkverify/internal/domaininfo"
)

var infoCmd = &cobra.Command{
	Use:   "info <domain>",
	Short: "Show WHOIS registration details for a domain",
	Long: `Fetches registration intelligence (age, registrar, expiry) for a
domain. Useful when a verdict recommends manual review: a brand-adjacent
domain registered days ago is a strong phishing signal.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		domain := strings.TrimSpace(args[0])
		asJSON, _ := cmd.Flags().GetBool("json")

		info, err := domaininfo.Lookup(domain)
		if err != nil {
			return err
		}

		if asJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(info)
		}

		fmt.Printf("Domain:     %s\n", info.Domain)
		if info.Registrar != "" {
			fmt.Printf("Registrar:  %s\n", info.Registrar)
		}
		if info.CreatedAt != nil {
			age := fmt.Sprintf("%d days", info.AgeDays)
			if info.AgeDays < 30 {
				age = colorError(age + " (recently registered)")
			} else {
				age = colorSuccess(age)
			}
			fmt.Printf("Created:    %s (age: %s)\n", info.CreatedAt.Format("2006-01-02"), age)
		}
		if info.ExpiresAt != nil {
			expiry := info.ExpiresAt.Format("2006-01-02")
			if time.Until(*info.ExpiresAt) < 30*24*time.Hour {
				expiry = colorWarn(expiry + " (expiring soon)")
			}
			fmt.Printf("Expires:    %s\n", expiry)
		}
		if len(info.NameServers) > 0 {
			fmt.Printf("NS:         %s\n", strings.Join(info.NameServers, ", "))
		}
		if len(info.Statuses) > 0 {
			fmt.Printf("Status:     %s\n", strings.Join(info.Statuses, ", "))
		}
		return nil
	},
}

func init() {
	infoCmd.Flags().Bool("json", false, "Emit registration details as JSON")
}
