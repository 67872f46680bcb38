// evidctl uploads local files to a running evidence API, showing per-file
// progress and retrying failures once on request.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/platformwatch/evidence/internal/evidence"
	"github.com/platformwatch/evidence/internal/uploader"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "evidence API base URL")
	reportID := flag.String("report", "", "report id to associate uploads with")
	direct := flag.Bool("direct", false, "upload straight to the object store via presigned URLs")
	retry := flag.Bool("retry", false, "retry failed files once after the first pass")
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "usage: evidctl [flags] file...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	client := uploader.NewClient(*serverURL)
	ctx := context.Background()

	if *direct {
		runDirect(ctx, client, paths)
		return
	}

	batch := uploader.NewBatch()
	for _, path := range paths {
		f, err := uploader.FileFromPath(path)
		if err != nil {
			log.Fatalf("read %s: %v", path, err)
		}
		batch.Add(f)
	}

	names := make(map[string]string)
	for _, item := range batch.Files() {
		names[item.ID] = item.File.Name
		if item.Status == uploader.StatusFailed {
			fmt.Printf("rejected %s: %v\n", item.File.Name, item.Err)
		}
	}

	callbacks := uploader.Callbacks{
		OnProgress: func(id string, pct int) {
			fmt.Printf("\r%s: %d%%", names[id], pct)
		},
		OnSuccess: func(id string, entry evidence.ManifestEntry) {
			fmt.Printf("\r%s -> %s\n", names[id], entry.URL)
		},
		OnError: func(id string, err error) {
			fmt.Printf("\r%s failed: %v\n", names[id], err)
		},
	}

	result, err := client.UploadBatch(ctx, batch, *reportID, callbacks)
	if err != nil {
		log.Fatalf("upload: %v", err)
	}

	if *retry && result.Failed > 0 && batch.Retry() > 0 {
		fmt.Printf("retrying %d failed file(s)...\n", result.Failed)
		result, err = client.UploadBatch(ctx, batch, *reportID, callbacks)
		if err != nil {
			log.Fatalf("retry upload: %v", err)
		}
	}

	fmt.Printf("uploaded %d, failed %d\n", result.Uploaded, result.Failed)
	if !result.Success {
		os.Exit(1)
	}
}

func runDirect(ctx context.Context, client *uploader.Client, paths []string) {
	failed := 0
	for _, path := range paths {
		f, err := uploader.FileFromPath(path)
		if err != nil {
			log.Fatalf("read %s: %v", path, err)
		}

		key, err := client.DirectUpload(ctx, f, func(pct int) {
			fmt.Printf("\r%s: %d%%", f.Name, pct)
		})
		if err != nil {
			fmt.Printf("\r%s failed: %v\n", f.Name, err)
			failed++
			continue
		}
		fmt.Printf("\r%s -> %s\n", f.Name, key)
	}
	if failed == len(paths) {
		os.Exit(1)
	}
}
