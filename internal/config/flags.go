package config

import (
	"errors"
	"flag"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-a server address in format [host]:[port]
//	-identity the identity domain this host serves
//	-d database DSN
//	-drive-root drive storage root directory
//	-c/-config json file path with configs
//	-token-issuer peer token issuer name
//	-token-duration peer token duration (e.g., "1h", "30m")
//	-request-timeout request timeout (e.g., "30s", "1m")
//	-outbox-interval outbox processing interval (e.g., "5s")
//	-outbox-batch-size max outbox entries popped per cycle
//	-sweep-interval perimeter state sweep interval
//	-sweep-idle-after idle time before an inbound transfer is reclaimed
func ParseFlags() *StructuredConfig {
	var serverAddress NetAddress
	var identity string
	var databaseDSN string
	var driveRoot string
	var jsonConfigPath string
	var tokenIssuer string
	var tokenDuration time.Duration
	var masterKey string
	var requestTimeout time.Duration
	var outboxInterval time.Duration
	var outboxBatchSize int
	var sweepInterval time.Duration
	var sweepIdleAfter time.Duration

	flag.Var(&serverAddress, "a", "Net address host:port")
	flag.StringVar(&identity, "identity", "", "Identity domain served by this host")
	flag.StringVar(&databaseDSN, "d", "", "Database DSN")
	flag.StringVar(&driveRoot, "drive-root", "", "Drive storage root directory")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.StringVar(&tokenIssuer, "token-issuer", "", "Peer token issuer")
	flag.DurationVar(&tokenDuration, "token-duration", 0, "Peer token duration (e.g., 1h, 30m)")
	flag.StringVar(&masterKey, "master-key", "", "Base64 master key sealing local file key headers")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	flag.DurationVar(&outboxInterval, "outbox-interval", 0, "Outbox processing interval (e.g., 5s)")
	flag.IntVar(&outboxBatchSize, "outbox-batch-size", 0, "Max outbox entries popped per cycle")
	flag.DurationVar(&sweepInterval, "sweep-interval", 0, "Perimeter state sweep interval")
	flag.DurationVar(&sweepIdleAfter, "sweep-idle-after", 0, "Idle time before an inbound transfer is reclaimed")

	flag.Parse()

	return &StructuredConfig{
		Host: Host{
			Identity:      identity,
			TokenIssuer:   tokenIssuer,
			TokenDuration: tokenDuration,
			MasterKey:     masterKey,
		},
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
			Drive: Drive{
				RootDir: driveRoot,
			},
		},
		Server: Server{
			HTTPAddress:    serverAddress.String(),
			RequestTimeout: requestTimeout,
		},
		Workers: Workers{
			OutboxInterval:  outboxInterval,
			OutboxBatchSize: outboxBatchSize,
			SweepInterval:   sweepInterval,
			SweepIdleAfter:  sweepIdleAfter,
		},
		JSONFilePath: jsonConfigPath,
	}
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 {
		return errors.New("port number is a positive integer")
	}

	if host != "localhost" {
		ip := net.ParseIP(hostAndPort[0])
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
