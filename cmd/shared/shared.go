// Package shared provides the CLI flag definitions and helpers used across
// focusws's commands.
package shared

import (
	"brainbuddy/focusws/pkg/config"

	"github.com/urfave/cli/v3"
)

const categoryServer = "server"

// HostFlag is the name of the flag to specify the bind interface.
const HostFlag = "host"

// PortFlag is the name of the flag to specify the listening port.
const PortFlag = "port"

// VerboseFlag is the name of the flag to enable verbose logging.
const VerboseFlag = "verbose"

// MetricsFlag is the name of the flag to specify the Prometheus address.
const MetricsFlag = "metrics"

// SSLFlag is the name of the flag to enable TLS with an ephemeral certificate.
const SSLFlag = "ssl"

// CertFlag is the name of the flag to specify a PEM certificate file.
const CertFlag = "cert"

// KeyFlag is the name of the flag to specify a PEM key file.
const KeyFlag = "key"

// TimeoutFlag is the name of the flag to specify the shutdown budget in milliseconds.
const TimeoutFlag = "timeout"

// GetServeFlags returns the flags of the serve command, which the root
// command shares.
func GetServeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     HostFlag,
			Usage:    "Local interface, leave empty for all interfaces",
			Category: categoryServer,
			Value:    "",
		},
		&cli.IntFlag{
			Name:     PortFlag,
			Aliases:  []string{"p"},
			Usage:    "Local port",
			Category: categoryServer,
			Value:    config.DefaultPort,
		},
		&cli.BoolFlag{
			Name:     VerboseFlag,
			Aliases:  []string{"v"},
			Usage:    "Verbose logging",
			Category: categoryServer,
			Value:    false,
		},
		&cli.StringFlag{
			Name:     MetricsFlag,
			Usage:    "Serve Prometheus metrics on this address, leave empty to disable",
			Category: categoryServer,
			Value:    "",
		},
		&cli.BoolFlag{
			Name:     SSLFlag,
			Aliases:  []string{"s"},
			Usage:    "Use TLS with an ephemeral self-signed certificate",
			Category: categoryServer,
			Value:    false,
		},
		&cli.StringFlag{
			Name:     CertFlag,
			Usage:    "PEM certificate file for TLS",
			Category: categoryServer,
			Value:    "",
		},
		&cli.StringFlag{
			Name:     KeyFlag,
			Usage:    "PEM key file for TLS",
			Category: categoryServer,
			Value:    "",
		},
		&cli.IntFlag{
			Name:     TimeoutFlag,
			Aliases:  []string{"t"},
			Usage:    "Graceful shutdown timeout in milliseconds",
			Category: categoryServer,
			Value:    5000,
		},
	}
}

const categoryToken = "token"

// UserFlag is the name of the flag to specify the token owner.
const UserFlag = "user"

// GetTokenFlags returns the flags of the token command.
func GetTokenFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     UserFlag,
			Aliases:  []string{"u"},
			Usage:    "User name the tokens are issued for",
			Category: categoryToken,
			Required: true,
		},
		&cli.StringFlag{
			Name:     HostFlag,
			Usage:    "Server host used in the printed URL",
			Category: categoryToken,
			Value:    "",
		},
		&cli.IntFlag{
			Name:     PortFlag,
			Aliases:  []string{"p"},
			Usage:    "Server port used in the printed URL",
			Category: categoryToken,
			Value:    config.DefaultPort,
		},
		&cli.BoolFlag{
			Name:     SSLFlag,
			Aliases:  []string{"s"},
			Usage:    "Print a wss:// URL",
			Category: categoryToken,
			Value:    false,
		},
	}
}
