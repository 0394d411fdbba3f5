// Command captchagen renders text captcha images to a local directory, S3 or OSS.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/kyiku/textcaptcha/internal/batch"
	"github.com/kyiku/textcaptcha/internal/captcha"
	"github.com/kyiku/textcaptcha/internal/config"
	"github.com/kyiku/textcaptcha/internal/logging"
	"github.com/kyiku/textcaptcha/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "captchagen:", err)
		os.Exit(1)
	}
}

func newFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("captchagen", pflag.ContinueOnError)
	flags.String("config", "", "YAML configuration file")

	flags.Int("count", 1, "number of captchas to generate")
	flags.Int("workers", 4, "number of concurrent workers")
	flags.Int64("seed", 0, "base random seed (0 picks one from the clock)")
	flags.String("sink", "local", "image destination: local, s3 or oss")
	flags.String("out", "out", "output directory of the local sink")
	flags.String("prefix", "captcha", "object key prefix")
	flags.String("manifest", "", "write a JSON Lines manifest to this file (- for stdout)")

	flags.Int("width", 150, "image width in pixels")
	flags.Int("height", 40, "image height in pixels")
	flags.Int("length", 4, "number of characters")
	flags.String("charset", captcha.DefaultCharset, "characters codes are sampled from")
	flags.String("font", "", "TrueType font file")
	flags.String("font-dir", "", "directory of .ttf fonts for --random-font")
	flags.Bool("random-font", false, "pick a random font")
	flags.Bool("border", false, "draw a border")

	flags.String("log-level", "info", "log level")
	flags.String("log-format", "console", "log format: json or console")

	flags.String("code", "", "render this code instead of a random one")
	flags.Bool("data-uri", false, "print a single captcha as a data URI instead of storing it")
	return flags
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	flags := newFlagSet()
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadConfig(flags)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	code, _ := flags.GetString("code")
	dataURI, _ := flags.GetBool("data-uri")

	if dataURI {
		return printDataURI(cfg, code, logger, stdout)
	}

	sink, err := newSink(ctx, cfg.Output)
	if err != nil {
		return err
	}

	if code != "" {
		return storeCode(ctx, cfg, sink, code, logger, stdout)
	}

	manifest, closeManifest, err := openManifest(cfg.Output.Manifest, stdout)
	if err != nil {
		return err
	}
	defer closeManifest()

	runner, err := batch.NewRunner(cfg.Captcha.ToCaptcha(), sink, batch.Options{
		Count:   cfg.Output.Count,
		Workers: cfg.Output.Workers,
		Seed:    cfg.Output.Seed,
		Prefix:  cfg.Output.Prefix,
	}, logger)
	if err != nil {
		return err
	}

	logger.Info("generating captchas",
		zap.Int("count", cfg.Output.Count),
		zap.Int("workers", runner.Workers()),
		zap.Int64("seed", runner.Seed()),
		zap.String("sink", sink.Name()),
	)

	_, err = runner.Run(ctx, manifest)
	return err
}

func newGenerator(cfg *config.Config, logger *zap.Logger) (*captcha.Generator, error) {
	opts := []captcha.Option{captcha.WithLogger(logger)}
	if cfg.Output.Seed != 0 {
		opts = append(opts, captcha.WithSource(captcha.NewSource(cfg.Output.Seed)))
	}
	return captcha.New(cfg.Captcha.ToCaptcha(), opts...)
}

func generate(gen *captcha.Generator, code string) (*captcha.Captcha, error) {
	if code != "" {
		return gen.GenerateCode(code)
	}
	return gen.Generate()
}

func printDataURI(cfg *config.Config, code string, logger *zap.Logger, stdout io.Writer) error {
	gen, err := newGenerator(cfg, logger)
	if err != nil {
		return err
	}
	result, err := generate(gen, code)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(stdout, "%s\n%s\n", result.Code, result.DataURI())
	return err
}

func storeCode(ctx context.Context, cfg *config.Config, sink storage.Sink, code string, logger *zap.Logger, stdout io.Writer) error {
	gen, err := newGenerator(cfg, logger)
	if err != nil {
		return err
	}
	result, err := generate(gen, code)
	if err != nil {
		return err
	}

	url, err := sink.Put(ctx, storage.ObjectKey(cfg.Output.Prefix), result.Image)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(stdout, "%s\t%s\n", result.Code, url)
	return err
}

func newSink(ctx context.Context, out config.OutputConfig) (storage.Sink, error) {
	switch out.Sink {
	case "s3":
		client, err := storage.NewS3Adapter(ctx, out.S3.Region, out.S3.Bucket)
		if err != nil {
			return nil, err
		}
		return storage.NewS3Sink(client, out.S3.Bucket, out.S3.BaseURL), nil
	case "oss":
		return storage.NewOSSSink(out.OSS.Endpoint, out.OSS.AccessKeyID, out.OSS.AccessKeySecret, out.OSS.Bucket, out.OSS.BaseURL)
	default:
		return storage.NewLocalSink(out.Dir, "")
	}
}

func openManifest(path string, stdout io.Writer) (io.Writer, func(), error) {
	switch path {
	case "":
		return nil, func() {}, nil
	case "-":
		return stdout, func() {}, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create manifest: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
