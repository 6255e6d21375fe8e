package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/soyeahso/suite/internal/config"
	"github.com/soyeahso/suite/internal/domain"
	"github.com/soyeahso/suite/internal/store"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// partyFile is the import format: customers and suppliers with their
// risk registers, keyed by the ids the module URLs use.
type partyFile struct {
	Customers []partyEntry `yaml:"customers"`
	Suppliers []partyEntry `yaml:"suppliers"`
}

type partyEntry struct {
	ID    string      `yaml:"id"`
	Name  string      `yaml:"name"`
	Risks []riskEntry `yaml:"risks"`
}

type riskEntry struct {
	Title      string `yaml:"title"`
	Severity   int    `yaml:"severity"`
	Likelihood int    `yaml:"likelihood"`
	Status     string `yaml:"status"`
}

func parsePartyFile(data []byte) ([]store.PartyImport, error) {
	var f partyFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	var out []store.PartyImport
	add := func(kind domain.PartyKind, entries []partyEntry) {
		for _, e := range entries {
			pi := store.PartyImport{Party: domain.Party{ID: e.ID, Kind: kind, Name: e.Name}}
			for _, r := range e.Risks {
				pi.Risks = append(pi.Risks, domain.Risk{
					Title:      r.Title,
					Severity:   r.Severity,
					Likelihood: r.Likelihood,
					Status:     domain.RiskStatus(r.Status),
				})
			}
			out = append(out, pi)
		}
	}
	add(domain.PartyCustomer, f.Customers)
	add(domain.PartySupplier, f.Suppliers)
	return out, nil
}

func newPartiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parties",
		Short: "Manage customer and supplier records",
	}
	cmd.AddCommand(newPartiesImportCmd())
	return cmd
}

func newPartiesImportCmd() *cobra.Command {
	var company string

	cmd := &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Load customers, suppliers and their risk registers",
		Long: "Reads a YAML file with customers and suppliers lists and writes them for one company.\n" +
			"Existing parties are renamed and their risk registers replaced, so the import can be re-run.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if company == "" {
				return fmt.Errorf("--company is required")
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			parties, err := parsePartyFile(data)
			if err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}
			if err := paths.EnsureDirs(); err != nil {
				return err
			}
			db, err := store.Open(paths.DBPath(cfg.Store), log)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer db.Close()

			stats, err := store.NewPartyStore(db).ImportParties(cmd.Context(), company, parties)
			if err != nil {
				return err
			}
			log.Info().Str("company", company).Int("parties", stats.Parties).Int("risks", stats.Risks).Msg("parties imported")
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d parties and %d risks for %s\n", stats.Parties, stats.Risks, company)
			return nil
		},
	}
	cmd.Flags().StringVar(&company, "company", "", "company the parties belong to")
	return cmd
}
