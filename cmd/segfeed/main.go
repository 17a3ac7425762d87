package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gonum.org/v1/gonum/stat"

	"github.com/seglab/segfeed"
	"github.com/seglab/segfeed/internal/cliconfig"
	"github.com/seglab/segfeed/internal/dataset"
	"github.com/seglab/segfeed/internal/decode"
	seglog "github.com/seglab/segfeed/pkg/log"
)

const longHelp = `Asynchronous training-data loader for semantic segmentation.

segfeed enumerates image/target pairs under a dataset root, decodes and
augments them on a worker pool, and stacks them into batches ahead of the
training loop. The CLI drives the same pipeline for benchmarking and
dataset inspection; configure via file, env (SEGFEED_*), or flags.`

var exampleUsage = `  segfeed bench --image-dir ./leftImg8bit/train --target-dir ./gtFine/train --num-classes 19
  segfeed stats --image-dir ./images --target-dir ./labels --num-classes 19
  segfeed inspect --image-dir ./images --target-dir ./labels`

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	log := cliconfig.Logger()

	// loadConfig layers file, env and flag values into cfg. Flags win over
	// env, env wins over file, file wins over defaults.
	loadConfig := func(cmd *cobra.Command) error {
		cfgFile := cfgPath
		if cfgFile == "" {
			cfgFile = cliconfig.DefaultConfigPath()
		}

		changed := map[string]bool{}
		cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

		if cfgFile != "" && cliconfig.FileExists(cfgFile) {
			fc, err := cliconfig.LoadFileConfig(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
				return err
			}
		}

		if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
			return err
		}

		return cfg.Validate()
	}

	root := &cobra.Command{
		Use:     "segfeed",
		Short:   "Asynchronous training-data loader for semantic segmentation",
		Long:    longHelp,
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
	}

	bench := &cobra.Command{
		Use:   "bench",
		Short: "Run the full pipeline and report batch throughput",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd); err != nil {
				return err
			}

			loader, err := segfeed.New(cfg.LoaderConfig(),
				segfeed.WithLogger(seglog.NewZerologAdapterWithLogger(log)))
			if err != nil {
				return fmt.Errorf("create loader: %w", err)
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigCh
				log.Info().Msg("received signal, stopping...")
				cancel()
			}()

			if err := loader.Start(ctx); err != nil {
				return fmt.Errorf("start loader: %w", err)
			}
			defer func() {
				if err := loader.Stop(); err != nil {
					log.Error().Err(err).Msg("stop loader")
				}
			}()

			log.Info().
				Int("samples", loader.NumSamples()).
				Int("batches_per_epoch", loader.NumBatches()).
				Int("epochs", cfg.Epochs).
				Msg("benchmark starting")

			start := time.Now()
			var batches, samples int

			for epoch := 0; epoch < cfg.Epochs; epoch++ {
				epochStart := time.Now()
				epochBatches := 0
				for {
					batch, err := loader.NextBatch(ctx)
					if errors.Is(err, segfeed.ErrEpochDone) {
						break
					}
					if err != nil {
						return fmt.Errorf("next batch: %w", err)
					}
					batches++
					epochBatches++
					samples += batch.Size()
				}

				elapsed := time.Since(epochStart)
				log.Info().
					Int("epoch", epoch).
					Int("batches", epochBatches).
					Dur("elapsed", elapsed).
					Msg("epoch complete")

				if stats := loader.EpochStats(); stats != nil {
					if n := stats.DecodeErrors.Load() + stats.TransformErrors.Load(); n > 0 {
						log.Warn().Uint64("skipped", n).Msg("samples skipped this epoch")
					}
				}

				if epoch+1 < cfg.Epochs {
					if err := loader.StartEpoch(cfg.Seed + int64(epoch) + 1); err != nil {
						return fmt.Errorf("start epoch: %w", err)
					}
				}
			}

			elapsed := time.Since(start)
			log.Info().
				Int("batches", batches).
				Int("samples", samples).
				Dur("elapsed", elapsed).
				Float64("samples_per_sec", float64(samples)/elapsed.Seconds()).
				Msg("benchmark complete")
			return nil
		},
	}

	inspect := &cobra.Command{
		Use:   "inspect",
		Short: "List the image/target pairs the dataset root yields",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd); err != nil {
				return err
			}

			refs, err := dataset.Scan(cfg.ImageDir, cfg.TargetDir)
			if err != nil {
				return err
			}

			for _, ref := range refs {
				fmt.Printf("%s\t%s\n", ref.ImagePath, ref.TargetPath)
			}
			fmt.Printf("%d pairs\n", len(refs))
			return nil
		},
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Decode the dataset and report channel and class statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd); err != nil {
				return err
			}
			if cfg.NumClasses <= 0 {
				return fmt.Errorf("num-classes is required")
			}

			refs, err := dataset.Scan(cfg.ImageDir, cfg.TargetDir)
			if err != nil {
				return err
			}

			imageLoader := &decode.RGBLoader{}
			targetLoader := &decode.GrayLoader{}

			// Per-image channel means; aggregated with gonum at the end.
			channelMeans := [3][]float64{}
			classCounts := make([]float64, cfg.NumClasses)
			var ignored, decodeErrs int

			for _, ref := range refs {
				img, err := imageLoader.Load(ref.ImagePath)
				if err != nil {
					log.Warn().Str("path", ref.ImagePath).Err(err).Msg("skipping image")
					decodeErrs++
					continue
				}
				for c := 0; c < 3; c++ {
					plane := img.Plane(c)
					sum := 0.0
					for _, v := range plane {
						sum += float64(v)
					}
					channelMeans[c] = append(channelMeans[c], sum/float64(len(plane)))
				}

				target, err := targetLoader.Load(ref.TargetPath)
				if err != nil {
					log.Warn().Str("path", ref.TargetPath).Err(err).Msg("skipping target")
					decodeErrs++
					continue
				}
				for _, cls := range target.Classes {
					if int(cls) < cfg.NumClasses {
						classCounts[cls]++
					} else {
						ignored++
					}
				}
			}

			names := []string{"r", "g", "b"}
			for c := 0; c < 3; c++ {
				if len(channelMeans[c]) == 0 {
					continue
				}
				mean := stat.Mean(channelMeans[c], nil)
				std := stat.StdDev(channelMeans[c], nil)
				fmt.Printf("channel %s: mean %.4f, std %.4f\n", names[c], mean, std)
			}

			total := 0.0
			for _, n := range classCounts {
				total += n
			}
			if total > 0 {
				freqs := make([]float64, len(classCounts))
				for i, n := range classCounts {
					freqs[i] = n / total
				}

				order := make([]int, len(freqs))
				for i := range order {
					order[i] = i
				}
				sort.Slice(order, func(i, j int) bool {
					return freqs[order[i]] > freqs[order[j]]
				})
				for _, i := range order {
					fmt.Printf("class %3d: %.4f\n", i, freqs[i])
				}
				fmt.Printf("class entropy: %.4f nats\n", stat.Entropy(freqs))
			}

			fmt.Printf("%d pairs, %d decode errors, %.0f labeled pixels, %d ignored\n",
				len(refs), decodeErrs, total, ignored)
			return nil
		},
	}

	root.AddCommand(bench, inspect, statsCmd)

	// Flags
	pf := root.PersistentFlags()
	pf.StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.segfeed/config.toml)")
	pf.StringVar(&cfg.ImageDir, "image-dir", cfg.ImageDir, "directory of source images")
	pf.StringVar(&cfg.TargetDir, "target-dir", cfg.TargetDir, "directory of label images")
	pf.IntVar(&cfg.NumClasses, "num-classes", cfg.NumClasses, "number of segmentation classes")
	pf.IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "samples per batch")
	pf.IntVar(&cfg.Workers, "workers", cfg.Workers, "concurrent decode/transform workers")
	pf.IntVar(&cfg.QueueCap, "queue-capacity", cfg.QueueCap, "processed-sample queue capacity")
	pf.IntVar(&cfg.Prefetch, "prefetch", cfg.Prefetch, "batches buffered ahead of the consumer")
	pf.BoolVar(&cfg.Shuffle, "shuffle", cfg.Shuffle, "reshuffle the dataset every epoch")
	pf.BoolVar(&cfg.Ordered, "ordered", cfg.Ordered, "restore enumeration order before batching")
	pf.BoolVar(&cfg.EmitPartial, "emit-partial", cfg.EmitPartial, "emit the short final batch instead of dropping it")
	pf.BoolVar(&cfg.Watch, "watch", cfg.Watch, "rescan the dataset on epoch start after file changes")
	pf.DurationVar(&cfg.MaxWait, "max-wait", cfg.MaxWait, "max time to wait for a batch (0 = no limit)")
	pf.IntVar(&cfg.TargetWidth, "target-width", cfg.TargetWidth, "force decoded samples to this width")
	pf.IntVar(&cfg.TargetHeight, "target-height", cfg.TargetHeight, "force decoded samples to this height")
	pf.StringVar(&cfg.Interpolation, "interpolation", cfg.Interpolation, "image resize kernel: bilinear, nearest, catmullrom")
	pf.Int64Var(&cfg.Seed, "seed", cfg.Seed, "seed for the first epoch")
	pf.IntVar(&cfg.Epochs, "epochs", cfg.Epochs, "epochs to run")

	pf.IntVar(&cfg.SubsampleFactor, "subsample", cfg.SubsampleFactor, "integer subsampling factor")
	pf.Float64Var(&cfg.GammaStrength, "gamma", cfg.GammaStrength, "random gamma strength in [0, 0.5]")
	pf.IntVar(&cfg.TranslationOffset, "translation", cfg.TranslationOffset, "max random translation in pixels")
	pf.Float64Var(&cfg.ZoomFactor, "zoom", cfg.ZoomFactor, "random zoom factor")
	pf.Float64Var(&cfg.RotationMaxAngle, "rotation", cfg.RotationMaxAngle, "max random rotation in degrees")
	pf.Float64Var(&cfg.SaturationMin, "saturation-min", cfg.SaturationMin, "min saturation scale")
	pf.Float64Var(&cfg.SaturationMax, "saturation-max", cfg.SaturationMax, "max saturation scale")
	pf.Float64Var(&cfg.HueMin, "hue-min", cfg.HueMin, "min hue shift in degrees")
	pf.Float64Var(&cfg.HueMax, "hue-max", cfg.HueMax, "max hue shift in degrees")
	pf.IntVar(&cfg.CropSize, "crop", cfg.CropSize, "entropy-weighted crop size")

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("segfeed")
		os.Exit(1)
	}
}
