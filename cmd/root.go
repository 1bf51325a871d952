package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var cfgFile string
var logger *zap.SugaredLogger

var rootCmd = &cobra.Command{
	Use:   "linkverify",
	Short: "URL safety verification for redirect services",
	Long: `linkverify runs a URL through five concurrent security checks
(structure, DNS, TLS, phishing heuristics, threat feeds) and produces a
single risk verdict suitable for gating short-link creation.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env carries provider API keys in development
		_ = godotenv.Load()

		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		} else {
			viper.AddConfigPath("$HOME")
			viper.AddConfigPath(".")
			viper.SetConfigName(".linkverify")
			viper.SetConfigType("yaml")
		}
		viper.SetEnvPrefix("LINKVERIFY")
		viper.AutomaticEnv()

		_ = viper.ReadInConfig()

		l, err := zap.NewProduction()
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		logger = l.Sugar()

		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.linkverify.yaml)")

	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(versionCmd)
}
