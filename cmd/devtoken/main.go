// Command devtoken signs a local token for exercising the gateway without the backend.
package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/spec-kit/clinic-dashboard/internal/auth"
	"github.com/spec-kit/clinic-dashboard/internal/config"
	"github.com/spec-kit/clinic-dashboard/internal/domain"
)

func main() {
	roles := pflag.StringSlice("role", nil, "role to embed (repeatable)")
	employeeID := pflag.String("employee", "", "employee id claim")
	ttl := pflag.Duration("ttl", 0, "token lifetime (defaults to DEVTOKEN_TTL_MINUTES)")
	pflag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	parsed := make([]domain.Role, 0, len(*roles))
	for _, raw := range *roles {
		role, ok := domain.ParseRole(strings.TrimSpace(raw))
		if !ok {
			log.Fatalf("unknown role %q", raw)
		}
		parsed = append(parsed, role)
	}

	req := auth.IssueRequest{Roles: parsed, EmployeeID: *employeeID}
	if *ttl > 0 {
		req.ExpiresAt = time.Now().Add(*ttl)
	}

	token, exp, err := auth.NewIssuer(cfg.DevToken.Secret, cfg.DevToken.TTLMinutes).Issue(req)
	if err != nil {
		log.Fatalf("failed to issue token: %v", err)
	}
	fmt.Fprintln(os.Stdout, token)
	fmt.Fprintf(os.Stderr, "expires at %s\n", exp.Format(time.RFC3339))
}
