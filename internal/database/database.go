// Package database implémente les ports de internal/store sur ScyllaDB.
package database

import (
	"fmt"
	"log"
	"time"

	"github.com/gocql/gocql"
)

// --- Configuration ScyllaDB ---
type ScyllaConfig struct {
	Hosts       []string
	Keyspace    string
	Username    string
	Password    string
	Timeout     time.Duration
	NumConns    int
	Consistency gocql.Consistency
}

func (c ScyllaConfig) withDefaults() ScyllaConfig {
	if c.Timeout == 0 {
		c.Timeout = 5 * time.Second
	}
	if c.NumConns == 0 {
		c.NumConns = 20
	}
	if c.Consistency == 0 {
		c.Consistency = gocql.Quorum
	}
	if c.Keyspace == "" {
		c.Keyspace = "furniture"
	}
	return c
}

// newCluster ne fixe pas de keyspace : InitSchema doit pouvoir le créer,
// toutes les requêtes sont qualifiées "keyspace.table".
func newCluster(cfg ScyllaConfig) *gocql.ClusterConfig {
	cluster := gocql.NewCluster(cfg.Hosts...)
	cluster.Consistency = cfg.Consistency
	cluster.SerialConsistency = gocql.LocalSerial
	cluster.Timeout = cfg.Timeout
	cluster.NumConns = cfg.NumConns
	cluster.MaxWaitSchemaAgreement = 30 * time.Second
	cluster.ReconnectInterval = 1 * time.Second
	if cfg.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.Username,
			Password: cfg.Password,
		}
	}
	cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())
	return cluster
}

// Connect ouvre la session ; le schéma n'est pas touché, voir InitSchema.
func Connect(cfg ScyllaConfig) (*Scylla, error) {
	cfg = cfg.withDefaults()
	if len(cfg.Hosts) == 0 {
		return nil, fmt.Errorf("SCYLLA_HOSTS non configuré")
	}
	session, err := newCluster(cfg).CreateSession()
	if err != nil {
		return nil, fmt.Errorf("erreur création session ScyllaDB: %w", err)
	}
	log.Printf("✅ Session ScyllaDB ouverte (keyspace '%s')", cfg.Keyspace)
	return &Scylla{session: session, ks: cfg.Keyspace}, nil
}

func (s *Scylla) Close() {
	s.session.Close()
	log.Printf("🔌 Session ScyllaDB fermée pour keyspace '%s'", s.ks)
}
