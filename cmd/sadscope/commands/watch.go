// Copyright (C) 2024 Toitware ApS. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package commands

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/toitlang/sadscope/cmd/sadscope/console"
)

// watchFeatures reports the feature flags of the config file at path
// whenever the file changes. Only the latest unread update is kept.
func watchFeatures(ctx context.Context, path string, status io.Writer) (<-chan console.Features, error) {
	path = filepath.Clean(path)
	dir := filepath.Dir(path)
	// Config writes replace the file, so the directory is watched.
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	updates := make(chan console.Features, 1)
	go func() {
		defer watcher.Close()
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != path {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				_, settings, err := GetSettings()
				if err != nil {
					printWarning(status, "Ignoring config change: %v", err)
					continue
				}
				select {
				case <-updates:
				default:
				}
				updates <- settings.Features
				printStatus(status, "Reloaded features from '%s'", path)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				printWarning(status, "Watch error: %v", err)
			case <-ctx.Done():
				return
			}
		}
	}()
	return updates, nil
}
