package main

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/vango-dev/tessera"
	"github.com/vango-dev/tessera/pkg/export"
	"github.com/vango-dev/tessera/pkg/treefile"
)

type exportFlags struct {
	out          string
	bucket       string
	prefix       string
	region       string
	endpoint     string
	cacheControl string
}

func exportCmd(g *globalFlags) *cobra.Command {
	f := &exportFlags{}

	cmd := &cobra.Command{
		Use:   "export [dir]",
		Short: "Export a directory of tree documents",
		Long: `Render every tree document under dir (default ".") and write the pages
to the export directory, or to an S3 bucket when --bucket or export.bucket
is set. S3 credentials are read from AWS_ACCESS_KEY_ID,
AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN.

Examples:
  tessera export pages
  tessera export pages --out public
  tessera export pages --bucket my-site --prefix docs/ --region eu-west-1`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runExport(cmd, g, f, dir)
		},
	}

	cmd.Flags().StringVarP(&f.out, "out", "o", "", "Output directory (default from export.dir)")
	cmd.Flags().StringVar(&f.bucket, "bucket", "", "S3 bucket (default from export.bucket)")
	cmd.Flags().StringVar(&f.prefix, "prefix", "", "S3 key prefix (default from export.prefix)")
	cmd.Flags().StringVar(&f.region, "region", os.Getenv("AWS_REGION"), "S3 region")
	cmd.Flags().StringVar(&f.endpoint, "endpoint", "", "Custom S3 endpoint, for S3-compatible stores")
	cmd.Flags().StringVar(&f.cacheControl, "cache-control", "", "Cache-Control for uploaded objects")

	return cmd
}

func runExport(cmd *cobra.Command, g *globalFlags, f *exportFlags, dir string) error {
	engine, err := newEngine(g)
	if err != nil {
		return err
	}

	docs, err := treefile.LoadDir(dir, engine.Options())
	if err != nil {
		return err
	}
	pages := make([]export.Page, 0, len(docs))
	for _, d := range docs {
		pages = append(pages, export.Page{Path: d.Path, Node: d.Node})
	}

	sink, where, err := newSink(engine, f)
	if err != nil {
		return err
	}

	n, err := export.Export(cmd.Context(), engine, pages, sink)
	if err != nil {
		return err
	}
	success(cmd.OutOrStdout(), "Exported %d pages to %s", n, where)
	return nil
}

// newSink picks S3 when a bucket is configured and the export directory
// otherwise.
func newSink(engine *tessera.Engine, f *exportFlags) (export.Sink, string, error) {
	cfg := engine.Config()

	bucket := f.bucket
	if bucket == "" {
		bucket = cfg.Export.Bucket
	}
	if bucket != "" {
		prefix := f.prefix
		if prefix == "" {
			prefix = cfg.Export.Prefix
		}
		sink := export.NewS3Sink(newS3Client(f), bucket, prefix)
		if f.cacheControl != "" {
			sink.WithCacheControl(f.cacheControl)
		}
		return sink, "s3://" + bucket + "/" + prefix, nil
	}

	out := f.out
	if out == "" {
		out = cfg.OutputPath()
	}
	sink, err := export.NewDirSink(out)
	if err != nil {
		return nil, "", err
	}
	return sink, out, nil
}

func newS3Client(f *exportFlags) *s3.Client {
	creds := aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
		return aws.Credentials{
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
			Source:          "tessera environment",
		}, nil
	})

	opts := s3.Options{
		Region:      f.region,
		Credentials: aws.NewCredentialsCache(creds),
	}
	if f.endpoint != "" {
		opts.BaseEndpoint = aws.String(f.endpoint)
		opts.UsePathStyle = true
	}
	return s3.New(opts)
}
