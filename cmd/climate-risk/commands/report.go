package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/mr1hm/go-climate-risk/internal/analytics"
	"github.com/mr1hm/go-climate-risk/internal/ingestion"
	"github.com/mr1hm/go-climate-risk/internal/models"
	"github.com/mr1hm/go-climate-risk/internal/pipeline"
	"github.com/mr1hm/go-climate-risk/internal/repository"
)

var (
	reportCountry  string
	reportFrom     int
	reportTo       int
	reportCoverage string
	reportPeril    string
	reportTop      int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the KPI summary for a selection",
	Long: `Loads the inputs once and prints the headline KPIs, the peril mix and
the deadliest and costliest events for the selection.

Example:
  climate-risk report --country Germany --from 2000 --to 2025 --coverage covered`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&reportCountry, "country", "", "country filter (empty for all of Europe)")
	reportCmd.Flags().IntVar(&reportFrom, "from", analytics.DefaultMinYear, "first year")
	reportCmd.Flags().IntVar(&reportTo, "to", analytics.DefaultMaxYear, "last year")
	reportCmd.Flags().StringVar(&reportCoverage, "coverage", "all", "all, covered or uncovered")
	reportCmd.Flags().StringVar(&reportPeril, "peril", "", "single peril filter")
	reportCmd.Flags().IntVar(&reportTop, "top", 5, "number of top events to list")
}

func runReport(cmd *cobra.Command, args []string) error {
	if reportFrom > reportTo {
		return fmt.Errorf("--from (%d) is after --to (%d)", reportFrom, reportTo)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Reload.Enabled = false

	db, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("error opening snapshot store: %w", err)
	}
	var repo repository.SnapshotRepository
	if db != nil {
		defer db.Close()
		repo = db
	}

	snap, err := ingestion.NewManager(cfg, pipeline.NewCache(), repo, nil).Reload(context.Background())
	if err != nil {
		return err
	}

	sel := models.Selection{}.
		WithYears(reportFrom, reportTo).
		WithCoverage(models.ParseCoverage(strings.ToLower(reportCoverage))).
		WithPeril(reportPeril)
	if reportCountry != "" && reportCountry != "All Europe" {
		sel = sel.WithCountry(reportCountry)
	}

	rows := analytics.Apply(snap.Dataset.Merged, sel)
	writeReport(cmd.OutOrStdout(), analytics.Summarize(rows, snap.Dataset.Portfolio), analytics.Distribution(rows), analytics.Top(rows, reportTop))
	return nil
}

func writeReport(w io.Writer, s analytics.Summary, mix []analytics.PerilCount, top analytics.TopEvents) {
	p := message.NewPrinter(language.English)

	p.Fprintf(w, "Events:               %d (%.1f per year)\n", s.TotalEvents, s.EventsPerYear)
	p.Fprintf(w, "Severity:             avg %.2f, median %.2f, %d above 7\n", s.AverageSeverity, s.MedianSeverity, s.HighSeverityEvents)
	if s.AverageDurationDays != nil {
		p.Fprintf(w, "Average duration:     %.1f days\n", *s.AverageDurationDays)
	}
	p.Fprintf(w, "Deaths:               %.0f\n", s.TotalDeaths)
	p.Fprintf(w, "Affected:             %.0f\n", s.TotalAffected)
	p.Fprintf(w, "Economic damage:      $%.2fB\n", s.EconomicDamageBillionUSD)
	p.Fprintf(w, "Insured damage:       $%.1fM (%.1f%% penetration)\n", s.InsuredDamageMillionUSD, s.InsurancePenetrationPct)
	p.Fprintf(w, "Portfolio:            %d policies, EUR %.1fB insured, EUR %.1fM premium\n",
		s.Portfolio.Policies, s.Portfolio.TotalInsuredValue, s.Portfolio.AnnualPremium)

	if len(mix) > 0 {
		p.Fprintf(w, "\nPeril mix:\n")
		for _, pc := range mix {
			p.Fprintf(w, "  %-12s %6d  %5.1f%%\n", pc.EventType, pc.Count, pc.Share*100)
		}
	}

	writeEvents(p, w, "Deadliest", top.Deadliest)
	writeEvents(p, w, "Costliest", top.Costliest)
}

func writeEvents(p *message.Printer, w io.Writer, title string, events []analytics.EventSummary) {
	if len(events) == 0 {
		return
	}
	p.Fprintf(w, "\n%s:\n", title)
	for _, e := range events {
		year := "?"
		if e.Year != nil {
			year = fmt.Sprint(*e.Year)
		}
		deaths := "n/a"
		if e.Deaths != nil {
			deaths = p.Sprintf("%.0f", *e.Deaths)
		}
		p.Fprintf(w, "  %s %-12s %-14s deaths %s  impact $%.1fM\n", year, e.EventType, e.Country, deaths, e.EconomicImpact)
	}
}
