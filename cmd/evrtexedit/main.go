// evrtexedit inspects, previews, and replaces Echo VR textures.
package main

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/heisthecat31/EchoVR-Texture-Editor/pkg/archive"
	"github.com/heisthecat31/EchoVR-Texture-Editor/pkg/astc"
	"github.com/heisthecat31/EchoVR-Texture-Editor/pkg/config"
	"github.com/heisthecat31/EchoVR-Texture-Editor/pkg/device"
	"github.com/heisthecat31/EchoVR-Texture-Editor/pkg/packer"
	"github.com/heisthecat31/EchoVR-Texture-Editor/pkg/preview"
	"github.com/heisthecat31/EchoVR-Texture-Editor/pkg/staging"
	"github.com/heisthecat31/EchoVR-Texture-Editor/pkg/task"
	"github.com/heisthecat31/EchoVR-Texture-Editor/pkg/texture"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	app := &cli.App{
		Name:  "evrtexedit",
		Usage: "inspect, preview, and replace Echo VR textures",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "workdir",
				Usage: "directory for config, cache, and staging",
				Value: ".",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "config file path (relative to workdir unless absolute)",
				Value: "config.json",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
			return nil
		},
		Commands: []*cli.Command{
			initCommand(log),
			listPackagesCommand(log),
			extractCommand(log),
			repackCommand(log),
			listTexturesCommand(log),
			infoCommand(log),
			describeCommand(log),
			previewCommand(log),
			previewHeadsetCommand(log),
			precacheCommand(log),
			compareCommand(log),
			replaceCommand(log),
			replaceHeadsetCommand(log),
			deployCommand(log),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

type env struct {
	cfg  config.Config
	path string
	log  zerolog.Logger
}

func loadEnv(c *cli.Context, log zerolog.Logger) (*env, error) {
	workdir := c.String("workdir")
	path := c.String("config")
	if !filepath.IsAbs(path) {
		path = filepath.Join(workdir, path)
	}
	cfg, err := config.Load(path, workdir)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, path: path, log: log}, nil
}

func (e *env) stager(pkg string) *staging.Stager {
	return &staging.Stager{
		ExtractedDir: filepath.Join(e.cfg.ExtractedDir, pkg),
		StagingDir:   e.cfg.StagingDir,
		Log:          e.log,
	}
}

func (e *env) loader() *preview.Loader {
	return &preview.Loader{
		Cache: &preview.Cache{Dir: e.cfg.CacheDir, Log: e.log},
		Converter: &preview.Converter{
			ToolPath: e.cfg.ConverterPath,
			Log:      e.log,
		},
		Log: e.log,
	}
}

// astcParts builds the searcher/encoder pair plus the memo store, which the
// caller must Save after a successful run.
func (e *env) astcParts() (*astc.Searcher, *astc.Encoder, *astc.ParamStore, error) {
	memo := astc.NewParamStore()
	if err := memo.Load(e.cfg.ParamStorePath); err != nil {
		return nil, nil, nil, err
	}

	table := astc.NewDimensionTable(nil)
	if _, err := os.Stat(e.cfg.DimensionTablePath); err == nil {
		table, err = astc.LoadDimensionTable(e.cfg.DimensionTablePath)
		if err != nil {
			return nil, nil, nil, err
		}
	}

	codec := &astc.ToolCodec{Path: e.cfg.EncoderPath, Log: e.log}
	searcher := &astc.Searcher{Codec: codec, Table: table, Memo: memo, Log: e.log}
	encoder := &astc.Encoder{Codec: codec, Table: table, Memo: memo, Log: e.log}
	return searcher, encoder, memo, nil
}

func (e *env) packerTool() (*packer.Tool, error) {
	path := e.cfg.PackerPath
	if path == "" {
		found, err := packer.Find(".")
		if err != nil {
			return nil, err
		}
		path = found
	}
	return &packer.Tool{Path: path, Log: e.log}, nil
}

func platformFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "platform",
		Usage: "target platform: pc or headset",
		Value: "pc",
	}
}

func parsePlatform(c *cli.Context) (staging.Platform, error) {
	switch c.String("platform") {
	case "pc":
		return staging.PlatformPC, nil
	case "headset":
		return staging.PlatformHeadset, nil
	default:
		return 0, fmt.Errorf("unknown platform %q", c.String("platform"))
	}
}

func initCommand(log zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "write a default config file",
		Action: func(c *cli.Context) error {
			e, err := loadEnv(c, log)
			if err != nil {
				return err
			}
			if err := config.Save(e.path, e.cfg); err != nil {
				return err
			}
			log.Info().Str("path", e.path).Msg("config written")
			return nil
		},
	}
}

func listPackagesCommand(log zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "list-packages",
		Usage: "list loadable packages in the game data directory",
		Action: func(c *cli.Context) error {
			e, err := loadEnv(c, log)
			if err != nil {
				return err
			}
			names, err := archive.ListPackages(e.cfg.DataDir)
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	}
}

func extractCommand(log zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:      "extract",
		Usage:     "extract a package into the extracted folder",
		ArgsUsage: "<package>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one package name")
			}
			e, err := loadEnv(c, log)
			if err != nil {
				return err
			}
			tool, err := e.packerTool()
			if err != nil {
				return err
			}
			pkg := c.Args().First()
			out := filepath.Join(e.cfg.ExtractedDir, pkg)
			if err := os.MkdirAll(out, 0o755); err != nil {
				return err
			}
			return tool.Extract(c.Context, pkg, e.cfg.DataDir, out)
		},
	}
}

func repackCommand(log zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:      "repack",
		Usage:     "rebuild a package with the staged replacements",
		ArgsUsage: "<package>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one package name")
			}
			e, err := loadEnv(c, log)
			if err != nil {
				return err
			}
			tool, err := e.packerTool()
			if err != nil {
				return err
			}
			pkg := c.Args().First()
			if err := os.MkdirAll(e.cfg.OutputDir, 0o755); err != nil {
				return err
			}
			return tool.Replace(c.Context, pkg, e.cfg.DataDir, e.cfg.StagingDir, e.cfg.OutputDir)
		},
	}
}

func listTexturesCommand(log zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:      "list-textures",
		Usage:     "list texture files in an extracted package",
		ArgsUsage: "<package>",
		Flags:     []cli.Flag{platformFlag()},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one package name")
			}
			e, err := loadEnv(c, log)
			if err != nil {
				return err
			}
			p, err := parsePlatform(c)
			if err != nil {
				return err
			}
			names, err := e.stager(c.Args().First()).ListTextures(p)
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	}
}

func infoCommand(log zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "print header details for a texture file",
		ArgsUsage: "<file>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one file")
			}
			info, err := texture.ParseFile(c.Args().First())
			if err != nil {
				return err
			}
			fmt.Println(info)
			if info.DecodePath() == texture.PathConverter {
				fmt.Println("decode: external converter required")
			} else {
				fmt.Println("decode: direct")
			}
			return nil
		},
	}
}

func describeCommand(log zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:      "describe",
		Usage:     "print a texture's companion descriptor record",
		ArgsUsage: "<package> <name>",
		Flags:     []cli.Flag{platformFlag()},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return fmt.Errorf("expected package and texture name")
			}
			e, err := loadEnv(c, log)
			if err != nil {
				return err
			}
			p, err := parsePlatform(c)
			if err != nil {
				return err
			}
			meta, err := e.stager(c.Args().Get(0)).Describe(p, c.Args().Get(1))
			if err != nil {
				return err
			}
			fmt.Println(meta)
			return nil
		},
	}
}

func previewCommand(log zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:      "preview",
		Usage:     "convert a texture to PNG for viewing",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Usage: "output PNG path (default: cache entry)"},
			&cli.BoolFlag{Name: "fit", Usage: "scale down for display"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one file")
			}
			e, err := loadEnv(c, log)
			if err != nil {
				return err
			}
			loader := e.loader()

			img, err := loader.Load(c.Context, c.Args().First())
			if err != nil {
				return err
			}
			if c.Bool("fit") {
				img = preview.FitForDisplay(img)
			}

			out := c.String("out")
			if out == "" {
				out = loader.Cache.Path(preview.Key(c.Args().First()))
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := png.Encode(f, img); err != nil {
				return err
			}
			log.Info().Str("out", out).Msg("preview written")
			return nil
		},
	}
}

func previewHeadsetCommand(log zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:      "preview-headset",
		Usage:     "decode a headset ASTC texture to PNG, searching for its block footprint",
		ArgsUsage: "<package> <name>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return fmt.Errorf("expected package and texture name")
			}
			e, err := loadEnv(c, log)
			if err != nil {
				return err
			}
			searcher, _, memo, err := e.astcParts()
			if err != nil {
				return err
			}

			pkg, name := c.Args().Get(0), c.Args().Get(1)
			st := e.stager(pkg)

			cache := &preview.Cache{Dir: e.cfg.CacheDir, Log: log}
			hl := &preview.HeadsetLoader{Cache: cache, Searcher: searcher, Log: log}
			if _, err := hl.Load(c.Context, name, func() ([]byte, error) {
				return os.ReadFile(st.OriginalPath(staging.PlatformHeadset, name))
			}); err != nil {
				return err
			}
			if err := memo.Save(e.cfg.ParamStorePath); err != nil {
				return err
			}

			event := log.Info().Str("out", cache.Path(name))
			if params, ok := memo.Get(name); ok {
				event = event.
					Int("width", params.Width).
					Int("height", params.Height).
					Str("block", params.Block().String())
			}
			event.Msg("headset texture decoded")
			return nil
		},
	}
}

func precacheCommand(log zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:      "precache",
		Usage:     "warm the preview cache for every texture in a package",
		ArgsUsage: "<package>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one package name")
			}
			e, err := loadEnv(c, log)
			if err != nil {
				return err
			}
			pkg := c.Args().First()
			st := e.stager(pkg)
			names, err := st.ListTextures(staging.PlatformPC)
			if err != nil {
				return err
			}

			loader := e.loader()
			paths := make([]string, len(names))
			for i, name := range names {
				paths[i] = st.OriginalPath(staging.PlatformPC, name)
			}

			sweep := &task.Precacher{
				Warm: func(ctx context.Context, path string) error {
					_, err := loader.Load(ctx, path)
					return err
				},
				Log: log,
			}
			handle := task.Run(c.Context, func(ctx context.Context) (task.Result, error) {
				return sweep.Run(ctx, paths)
			})
			res, err := handle.Wait(c.Context)
			if err != nil {
				return err
			}
			log.Info().Int("warmed", res.Warmed).Int("failed", res.Failed).Msg("pre-cache complete")
			return nil
		},
	}
}

func compareCommand(log zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:      "compare",
		Usage:     "summarize differences between an original and a replacement",
		ArgsUsage: "<original> <replacement>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return fmt.Errorf("expected original and replacement files")
			}
			cmp, err := preview.Compare(c.Args().Get(0), c.Args().Get(1))
			if err != nil {
				return err
			}
			fmt.Println(cmp)
			return nil
		},
	}
}

func replaceCommand(log zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:      "replace",
		Usage:     "stage a PC texture replacement (DDS file) with its patched descriptor",
		ArgsUsage: "<package> <name> <replacement.dds>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 3 {
				return fmt.Errorf("expected package, texture name, and replacement file")
			}
			e, err := loadEnv(c, log)
			if err != nil {
				return err
			}
			pkg, name, file := c.Args().Get(0), c.Args().Get(1), c.Args().Get(2)
			return e.stager(pkg).StageFile(staging.PlatformPC, name, file)
		},
	}
}

func replaceHeadsetCommand(log zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:      "replace-headset",
		Usage:     "encode an image to ASTC and stage it for the headset",
		ArgsUsage: "<package> <name> <image>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 3 {
				return fmt.Errorf("expected package, texture name, and image file")
			}
			e, err := loadEnv(c, log)
			if err != nil {
				return err
			}
			_, encoder, memo, err := e.astcParts()
			if err != nil {
				return err
			}

			pkg, name, image := c.Args().Get(0), c.Args().Get(1), c.Args().Get(2)
			st := e.stager(pkg)

			orig, err := os.Stat(st.OriginalPath(staging.PlatformHeadset, name))
			if err != nil {
				return fmt.Errorf("original texture not found: %w", err)
			}

			blocks, err := encoder.Encode(c.Context, name, image, int(orig.Size()))
			if err != nil {
				return err
			}
			if err := st.Stage(staging.PlatformHeadset, name, blocks); err != nil {
				return err
			}
			return memo.Save(e.cfg.ParamStorePath)
		},
	}
}

func deployCommand(log zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:      "deploy",
		Usage:     "push a repacked package to the headset",
		ArgsUsage: "<local> <remote>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return fmt.Errorf("expected local path and remote path")
			}
			e, err := loadEnv(c, log)
			if err != nil {
				return err
			}
			bridge := &device.Bridge{Path: e.cfg.BridgePath, Log: log}
			if err := bridge.Check(c.Context); err != nil {
				return err
			}
			return bridge.Push(c.Context, c.Args().Get(0), c.Args().Get(1))
		},
	}
}
