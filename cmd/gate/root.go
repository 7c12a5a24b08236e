package gate

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "gate",
	Short: "A Minecraft Java Edition proxy",
	Long: `Gate is a lightweight, high-performance Minecraft proxy.
It speaks the vanilla Java Edition protocol directly and transparently
hands connected players off between backend servers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to
// happen once for the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug log")
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
	}

	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("gate")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintln(os.Stderr, "Error reading config file:", err)
		}
	}
}

// setDefaults seeds viper with the values a fresh checkout needs to
// bind and accept vanilla clients without any config.yml at all.
func setDefaults() {
	viper.SetDefault("bind", "0.0.0.0:25565")
	viper.SetDefault("onlineMode", true)
	viper.SetDefault("readTimeout", 30000)
	viper.SetDefault("connectionTimeout", 5000)
	viper.SetDefault("loginTimeout", 10000)
	viper.SetDefault("switchTimeout", 10000)
	viper.SetDefault("compressionThreshold.threshold", 256)
	viper.SetDefault("compressionThreshold.level", -1)
	viper.SetDefault("enableDynamicFallbacks", true)
	viper.SetDefault("enableMostPopulatedFallbacks", false)
	viper.SetDefault("failoverOnUnexpectedServerDisconnect", true)
	viper.SetDefault("pingPassthrough", false)
	viper.SetDefault("forwarding.mode", "none")
	viper.SetDefault("loginRateLimit.enabled", true)
	viper.SetDefault("loginRateLimit.perSecond", 0.3)
	viper.SetDefault("loginRateLimit.burst", 1)
}
