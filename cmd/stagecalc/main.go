// stagecalc runs one-shot coverage and rigging reports on a scene file,
// for use from the command line without the HTTP service.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/venuelab/stagecraft/internal/catalog"
	"github.com/venuelab/stagecraft/internal/domain/coverage"
	"github.com/venuelab/stagecraft/internal/domain/rigging"
	"github.com/venuelab/stagecraft/internal/scene"
)

var CLI struct {
	Coverage CoverageCmd `cmd:"" help:"Sample the audience area and report SPL coverage."`
	Rigging  RiggingCmd  `cmd:"" help:"Check rigging loads, cable sag, and truss sizing."`
}

// CoverageCmd samples the scene's audience region and prints grid statistics.
type CoverageCmd struct {
	Scene   string `arg:"" name:"scene" help:"Scene file (YAML)." type:"existingfile"`
	Catalog string `help:"Equipment catalog overlay file." type:"existingfile"`

	Breakdown bool `help:"Report the quality split per band."`
}

func (c CoverageCmd) Run() error {
	ctx := context.Background()

	sc, err := loadScene(ctx, c.Scene, c.Catalog)
	if err != nil {
		return err
	}

	grid, err := coverage.Generate(ctx, coverage.GridRequest{
		Scene:      sc.Coverage,
		Region:     sc.Region,
		Resolution: sc.Resolution,
		Height:     sc.Height,
	})
	if err != nil {
		return fmt.Errorf("coverage: %w", err)
	}

	fmt.Printf("coverage grid: %d x %d points (%d total)\n", grid.Columns, grid.Rows, len(grid.Points))
	fmt.Printf("  SPL  avg %.1f dB  min %.1f dB  max %.1f dB\n",
		grid.Stats.AvgSPL, grid.Stats.MinSPL, grid.Stats.MaxSPL)

	order := []coverage.Quality{
		coverage.QualityPoor,
		coverage.QualityAcceptable,
		coverage.QualityGood,
		coverage.QualityExcellent,
		coverage.QualityExcessive,
	}
	for _, q := range order {
		pct, ok := grid.Stats.QualityPercent[q]
		if !ok {
			continue
		}
		fmt.Printf("  %-11s %5.1f%%\n", q, pct)
	}

	return nil
}

// RiggingCmd validates the scene's rigging: load distribution, cable sag
// per span, and truss sizing when the file asks for one.
type RiggingCmd struct {
	Scene   string `arg:"" name:"scene" help:"Scene file (YAML)." type:"existingfile"`
	Catalog string `help:"Equipment catalog overlay file." type:"existingfile"`
}

func (c RiggingCmd) Run() error {
	ctx := context.Background()

	sc, err := loadScene(ctx, c.Scene, c.Catalog)
	if err != nil {
		return err
	}

	unsafe := false

	if len(sc.Points) > 0 || len(sc.Loads) > 0 {
		dist := rigging.DistributeLoads(rigging.LoadDistributionInput{
			Points: sc.Points,
			Loads:  sc.Loads,
		})

		fmt.Printf("load distribution: %.0f kg static, %.0f kg dynamic\n",
			dist.TotalStatic, dist.TotalDynamic)
		for _, p := range dist.PointLoads {
			fmt.Printf("  %-12s %7.0f kg  tension %7.0f N  utilization %5.1f%%\n",
				p.PointID, p.DynamicLoad, p.CableTension, p.Utilization)
		}
		if dist.SafetyFactor > 0 {
			fmt.Printf("  safety factor %.1f:1\n", dist.SafetyFactor)
		}
		printVerdict(dist.Safe)
		printWarnings(dist.Warnings)
		unsafe = unsafe || !dist.Safe
	}

	for i, span := range sc.Spans {
		res, err := rigging.SolveCatenary(span)
		if err != nil {
			return fmt.Errorf("span %d: %w", i+1, err)
		}
		fmt.Printf("span %d: %.1f m, %.0f kg suspended\n", i+1, span.Span, span.SuspendedWeight)
		fmt.Printf("  sag %.3f m  cable length %.2f m  max tension %.0f N\n",
			res.Sag, res.CableLength, res.MaxTension)
	}

	if material, span, uniform, point, ok := sc.TrussQuery(); ok {
		rec, err := rigging.RecommendTrussSize(material, span, uniform, point)
		if err != nil {
			return fmt.Errorf("truss sizing: %w", err)
		}
		fmt.Printf("truss: %s %s over %.1f m\n", material, rec.Section, span)
		fmt.Printf("  deflection %.1f mm  span/deflection ratio %.0f  status %s\n",
			rec.Result.Deflection*1000, rec.Result.Ratio, rec.Result.Status)
		printVerdict(rec.Adequate && rec.Result.SafetyOk)
		printWarnings(rec.Warnings)
		printWarnings(rec.Result.Warnings)
		unsafe = unsafe || !rec.Adequate || !rec.Result.SafetyOk
	}

	if unsafe {
		return fmt.Errorf("rigging check failed")
	}
	return nil
}

func loadScene(ctx context.Context, scenePath, catalogPath string) (*scene.Scene, error) {
	cat, err := catalog.Load(ctx, catalogPath)
	if err != nil {
		return nil, err
	}
	return scene.Load(ctx, scenePath, cat)
}

func printVerdict(ok bool) {
	if ok {
		fmt.Println("  verdict: SAFE")
	} else {
		fmt.Println("  verdict: NOT SAFE")
	}
}

func printWarnings(warnings []rigging.Warning) {
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "  warning [%s]: %s\n", w.Kind, w.Message)
	}
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("stagecalc"),
		kong.Description("Offline coverage and rigging reports for stagecraft scene files."),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run())
}
