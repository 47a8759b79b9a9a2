// Package ioutils provides file system and image helpers.
//
// This package contains functions for:
//   - Directory creation
//   - Atomic file writes (config file)
//   - Image decoding and downscaling for in-terminal cover previews
//
// # File Operations
//
//	err := ioutils.EnsureDir("/home/me/.config/vinylvault")
//	err = ioutils.WriteFileAtomic(path, data, 0o600)
//
// # Image Processing
//
// The ImageService shrinks cover art so it can be drawn with terminal cells:
//
//	svc := ioutils.NewImageService()
//	thumb, err := svc.Thumbnail(ctx, coverBytes, 24, 24)
package ioutils
