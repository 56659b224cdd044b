// Package media turns uploads and remote video URLs into normalized audio
// and normalized audio into text.
//
// All heavy lifting is done by external tools driven through a
// CommandRunner:
//
//   - ffmpeg: conversion to 16 kHz mono PCM WAV and fixed-length windowing
//   - yt-dlp: best-audio download of remote videos
//   - whisper-cli (whisper.cpp): speech recognition per window
//
// # Usage
//
//	cfg := media.DefaultConfig()
//	cfg.WhisperModel = "models/ggml-small.bin"
//
//	acquirer, err := media.NewAcquirer(cfg)
//	transcriber, err := media.NewTranscriber(cfg)
//
//	wav, err := acquirer.Download(ctx, "https://www.youtube.com/watch?v=...")
//	text, err := transcriber.Transcribe(ctx, wav, "auto")
package media
