// Command brokercheck validates a broker configuration file, prints the
// configured SP personas, and can probe an IdP through the MDQ service.
// Usage: go run ./cmd/brokercheck -config svs.yaml [-probe https://idp.example.org/idp]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/SvHu/svs/internal/adapters/driven/mdq"
	"github.com/SvHu/svs/internal/adapters/driving/broker"
	"github.com/SvHu/svs/internal/core/domain"
)

func main() {
	configPath := flag.String("config", "svs.yaml", "Path to the broker configuration file")
	probe := flag.String("probe", "", "Entity id of an IdP to look up through the MDQ service")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	cfg, err := broker.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Configuration invalid: %v", err)
	}
	fmt.Printf("Configuration OK: %s\n", *configPath)

	for _, key := range []string{domain.ScopePersistent, domain.ScopeTransient} {
		pc := cfg.Personas[key]
		fmt.Printf("\nPersona %q\n", key)
		fmt.Printf("  entity id:     %s\n", pc.EntityID)
		fmt.Printf("  disco return:  %s\n", pc.DiscoReturnURL)
		fmt.Printf("  sign requests: %v\n", pc.SignRequests)
		for _, acs := range pc.ACS {
			fmt.Printf("  acs:           %s (%s)\n", acs.URL, acs.Binding)
		}
	}

	if *probe == "" {
		return
	}

	logger := zap.NewNop()
	if *verbose {
		logger, err = zap.NewDevelopment()
		if err != nil {
			log.Fatalf("Failed to build logger: %v", err)
		}
	}

	client := mdq.NewClient(cfg.MDQURL, mdq.WithLogger(logger))
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	endpoints, err := client.SSOEndpoints(ctx, *probe)
	if err != nil {
		fmt.Fprintf(os.Stderr, "MDQ lookup failed for %s: %v\n", *probe, err)
		os.Exit(1)
	}

	fmt.Printf("\nIdP %s\n", *probe)
	for binding, eps := range endpoints {
		for _, ep := range eps {
			fmt.Printf("  sso: %s (%s)\n", ep.Location, binding)
		}
	}
	if binding, ok := domain.SelectBinding(endpoints); ok {
		fmt.Printf("  chosen binding: %s\n", binding)
	} else {
		fmt.Println("  no supported binding offered")
	}
}
