package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/trevor-gituru/wireguard-relay-api/app"
	"github.com/trevor-gituru/wireguard-relay-api/log"
	"github.com/trevor-gituru/wireguard-relay-api/model"
	"github.com/trevor-gituru/wireguard-relay-api/server"
	"github.com/trevor-gituru/wireguard-relay-api/store/filestore"
	"github.com/trevor-gituru/wireguard-relay-api/wireguard"
)

// Command is an abstraction of the cobra Command
type Command = cobra.Command

// Run function starts the application
func Run(args []string) error {
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

// rootCmd is a command to run the relay server.
var rootCmd = &Command{
	Use:   "relay",
	Short: "WireGuard relay provisioning API",
	RunE:  serverCmdF,
}

var (
	flagPort           int
	flagRegistryPath   string
	flagInterface      string
	flagConfPath       string
	flagNetwork        string
	flagMaxIP          int
	flagRelayPublicKey string
	flagLogFile        string
)

func init() {
	rootCmd.Flags().IntVar(&flagPort, "port", 0, "Port to listen on")
	rootCmd.Flags().StringVar(&flagRegistryPath, "registry", "", "Path to the device registry file")
	rootCmd.Flags().StringVar(&flagInterface, "interface", "", "WireGuard interface name")
	rootCmd.Flags().StringVar(&flagConfPath, "conf", "", "Path to the WireGuard configuration file")
	rootCmd.Flags().StringVar(&flagNetwork, "network", "", "Tunnel network prefix, e.g. 10.10.0")
	rootCmd.Flags().IntVar(&flagMaxIP, "max-ip", 0, "Inclusive upper bound of the last octet")
	rootCmd.Flags().StringVar(&flagRelayPublicKey, "relay-public-key", "", "Relay public key returned to devices")
	rootCmd.Flags().StringVar(&flagLogFile, "log-file", "relay_api.log", "Log file location")
}

func serverCmdF(command *cobra.Command, args []string) error {
	logger := log.NewLogger(&log.LoggerConfiguration{
		EnableConsole: true,
		ConsoleJSON:   false,
		ConsoleLevel:  "info",
		EnableFile:    true,
		FileJSON:      true,
		FileLevel:     "info",
		FileLocation:  flagLogFile,
	})

	config := model.NewConfig()
	if flagPort != 0 {
		config.HTTPSettings.Port = flagPort
	}
	if flagRegistryPath != "" {
		config.RegistrySettings.Path = flagRegistryPath
	}
	if flagInterface != "" {
		config.WireGuardSettings.Interface = flagInterface
	}
	if flagConfPath != "" {
		config.WireGuardSettings.ConfPath = flagConfPath
	}
	if flagNetwork != "" {
		config.RelaySettings.Network = flagNetwork
	}
	if flagMaxIP != 0 {
		config.RelaySettings.MaxIP = flagMaxIP
	}
	if flagRelayPublicKey != "" {
		config.RelaySettings.PublicKey = flagRelayPublicKey
	}

	registry := filestore.New(
		config.RegistrySettings.Path,
		config.RelaySettings.Network,
		config.RelaySettings.MaxIP)
	commander := wireguard.NewCommander(
		time.Duration(config.WireGuardSettings.CommandTimeout) * time.Second)
	synchronizer := wireguard.NewManager(
		config.WireGuardSettings.Interface,
		config.WireGuardSettings.ConfPath,
		commander,
		logger)
	a := app.NewApp(registry, synchronizer, config, logger)

	httpServer := server.NewHTTPServer(logger, config, a)

	servers := server.New(logger)
	servers.AddServers(httpServer)
	servers.Run()

	return nil
}
