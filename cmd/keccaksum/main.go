// Command keccaksum prints the Keccak-256 digest of files, streaming each one
// through its own preimage session in fixed-size chunks.
package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/c2h5oh/datasize"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	keccak "github.com/Giulio2002/keccak_preimage"
	"github.com/Giulio2002/keccak_preimage/preimage"
)

// maxChunk bounds the read buffer allocated per file.
const maxChunk = datasize.GB

var (
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "TOML file with registry limits",
	}
	chunkFlag = &cli.StringFlag{
		Name:  "chunk",
		Usage: "size of each update submitted to a session",
		Value: "32KB",
	}
	jobsFlag = &cli.IntFlag{
		Name:  "jobs",
		Usage: "number of files hashed in parallel",
		Value: runtime.NumCPU(),
	}
	verifyFlag = &cli.BoolFlag{
		Name:  "verify",
		Usage: "cross-check every digest against golang.org/x/crypto/sha3",
	}
	verbosityFlag = &cli.StringFlag{
		Name:  "verbosity",
		Usage: "log level (trace, debug, info, warn, error)",
		Value: "warn",
	}
)

func newApp() *cli.App {
	return &cli.App{
		Name:      "keccaksum",
		Usage:     "print Keccak-256 digests of files hashed chunk by chunk",
		ArgsUsage: "[FILE...]",
		Flags:     []cli.Flag{configFlag, chunkFlag, jobsFlag, verifyFlag, verbosityFlag},
		Action:    run,
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	level, err := zerolog.ParseLevel(ctx.String(verbosityFlag.Name))
	if err != nil {
		return fmt.Errorf("invalid verbosity: %w", err)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: ctx.App.ErrWriter}).Level(level).With().Timestamp().Logger()

	cfg := preimage.DefaultConfig()
	if path := ctx.String(configFlag.Name); path != "" {
		if cfg, err = preimage.LoadConfig(path); err != nil {
			return err
		}
	}

	var chunk datasize.ByteSize
	if err := chunk.UnmarshalText([]byte(ctx.String(chunkFlag.Name))); err != nil {
		return fmt.Errorf("invalid chunk size: %w", err)
	}
	if chunk == 0 {
		return errors.New("chunk size must be positive")
	}
	if chunk > maxChunk {
		return fmt.Errorf("chunk size %s exceeds the %s limit", chunk.HR(), maxChunk.HR())
	}

	reg, err := preimage.NewRegistry(cfg, logger, preimage.NoopMetrics{})
	if err != nil {
		return err
	}

	names := ctx.Args().Slice()
	if len(names) == 0 {
		names = []string{"-"}
	}
	stdinArgs := 0
	for _, name := range names {
		if name == "-" {
			stdinArgs++
		}
	}
	if stdinArgs > 1 {
		return errors.New("standard input (-) may be named only once")
	}
	jobs := ctx.Int(jobsFlag.Name)
	if jobs <= 0 {
		jobs = 1
	}

	digests := make([][keccak.Size]byte, len(names))
	g, gctx := errgroup.WithContext(ctx.Context)
	g.SetLimit(min(jobs, cfg.MaxSessions))
	for i, name := range names {
		g.Go(func() error {
			h := &fileHasher{reg: reg, chunk: int(chunk), verify: ctx.Bool(verifyFlag.Name), stdin: ctx.App.Reader}
			digest, err := h.hash(gctx, name)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			digests[i] = digest
			logger.Debug().Str("file", name).Hex("digest", digest[:]).Msg("hashed")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, name := range names {
		fmt.Fprintf(ctx.App.Writer, "%x  %s\n", digests[i], name)
	}
	return nil
}
