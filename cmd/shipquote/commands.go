package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"

	"shipquote/data"
	"shipquote/internal/infra"
	"shipquote/internal/modules/quote"
	"shipquote/internal/modules/tariff"
	"shipquote/internal/modules/zone"
)

type sourceFlags struct {
	zones     string
	matrix    string
	presets   string
	preset    string
	overrides string
	timeout   time.Duration
}

// env holds the loaded components for one command run.
type env struct {
	directory *zone.Directory
	model     *tariff.Model
	engine    *quote.Engine
}

func (f *sourceFlags) load(ctx context.Context) (*env, error) {
	fetcher := infra.NewSourceFetcher(data.FS, f.timeout)
	directory := zone.NewDirectory(fetcher)
	model := tariff.NewModel(fetcher, nil)

	directory.LoadZones(ctx, f.zones)
	directory.LoadDistanceMatrix(ctx, f.matrix)
	model.LoadPresets(ctx, f.presets)

	if f.preset != "" {
		if _, err := model.ApplyPresetByID(f.preset); err != nil {
			return nil, err
		}
	}
	if f.overrides != "" {
		values, err := url.ParseQuery(f.overrides)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", tariff.ErrInvalidOverride, err)
		}
		if err := model.ApplyOverrides(values); err != nil {
			return nil, err
		}
	}
	return &env{directory: directory, model: model, engine: quote.NewEngine(directory, model)}, nil
}

func newRootCmd() *cobra.Command {
	flags := &sourceFlags{}
	root := &cobra.Command{
		Use:          "shipquote",
		Short:        "Quote shipping costs from zone, distance and tariff data",
		SilenceUsage: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&flags.zones, "zones", "embed://zones.geojson", "zone GeoJSON source")
	pf.StringVar(&flags.matrix, "matrix", "embed://matrix.json", "distance matrix source")
	pf.StringVar(&flags.presets, "presets", "embed://presets.json", "pricing preset list source")
	pf.StringVar(&flags.preset, "preset", "", "preset id to apply instead of the first one")
	pf.StringVar(&flags.overrides, "overrides", "", "tariff overrides as a query string, e.g. fuel_pct=10&peak_pct=5")
	pf.DurationVar(&flags.timeout, "timeout", 10*time.Second, "per-source load timeout")

	root.AddCommand(newQuoteCmd(flags), newBatchCmd(flags), newZonesCmd(flags))
	return root
}

func newQuoteCmd(flags *sourceFlags) *cobra.Command {
	var s quote.Shipment
	var service string
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote a single shipment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s.Service = tariff.ServiceLevel(service)
			if err := s.Validate(); err != nil {
				return err
			}
			e, err := flags.load(cmd.Context())
			if err != nil {
				return err
			}
			r := e.engine.CalculateQuote(s)
			if !r.Finite() {
				return fmt.Errorf("quote is not finite; check tariff parameters")
			}
			return writeJSON(cmd.OutOrStdout(), r)
		},
	}
	f := cmd.Flags()
	f.StringVar(&s.OriginZone, "origin", "", "origin zone id")
	f.StringVar(&s.DestZone, "dest", "", "destination zone id")
	f.Float64Var(&s.LengthIn, "length", 0, "length in inches")
	f.Float64Var(&s.WidthIn, "width", 0, "width in inches")
	f.Float64Var(&s.HeightIn, "height", 0, "height in inches")
	f.Float64Var(&s.WeightLb, "weight", 0, "actual weight in pounds")
	f.StringVar(&service, "service", string(tariff.ServiceStandard), "service level: standard or expedited")
	f.Float64Var(&s.DeclaredValue, "declared-value", 0, "declared value in dollars")
	f.BoolVar(&s.Residential, "residential", false, "deliver to a residential address")
	_ = cmd.MarkFlagRequired("origin")
	_ = cmd.MarkFlagRequired("dest")
	return cmd
}

func newBatchCmd(flags *sourceFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "batch <shipments.json>",
		Short: "Quote a JSON array of shipments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var shipments []quote.Shipment
			if err := json.Unmarshal(raw, &shipments); err != nil {
				return fmt.Errorf("decode %s: %w", args[0], err)
			}
			for i, s := range shipments {
				if err := s.Validate(); err != nil {
					return fmt.Errorf("shipment %d: %w", i, err)
				}
			}
			e, err := flags.load(cmd.Context())
			if err != nil {
				return err
			}
			results := e.engine.CalculateBatch(shipments)
			if !quote.AllFinite(results) {
				return fmt.Errorf("quote is not finite; check tariff parameters")
			}
			return writeJSON(cmd.OutOrStdout(), results)
		},
	}
}

func newZonesCmd(flags *sourceFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "zones",
		Short: "List the loaded zones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := flags.load(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), e.directory.Zones())
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
