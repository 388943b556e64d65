// ABOUTME: Entry point for the pcmsink demo player
// ABOUTME: Parses CLI flags and plays a file through the sink
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/emmef/pcmsink/internal/app"
	"github.com/emmef/pcmsink/internal/ui"
	"github.com/emmef/pcmsink/internal/version"
)

var (
	file         = flag.String("file", "", "Audio file to play (WAV or MP3)")
	backend      = flag.String("backend", "oto", "Output backend: sim, oto, malgo, portaudio")
	bufferMs     = flag.Int("buffer-ms", 0, "Device buffer size in milliseconds (0 uses settings)")
	settingsPath = flag.String("settings", "", "Settings file path (default: in-memory)")
	logFile      = flag.String("log-file", "pcmsink.log", "Log file path")
	noTUI        = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
	showVersion  = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}
	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: pcmsink -file <audio file> [-backend sim|oto|malgo]")
		os.Exit(2)
	}

	// Set up logging
	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if *noTUI {
		// Streaming logs mode: log to both stdout and file
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	} else {
		// TUI mode: log only to file
		log.SetOutput(f)
	}

	log.Printf("Starting %s: file=%s backend=%s", version.String(), *file, *backend)

	player, err := app.New(app.Config{
		File:         *file,
		Backend:      *backend,
		BufferMs:     *bufferMs,
		SettingsPath: *settingsPath,
	})
	if err != nil {
		log.Printf("cannot start playback: %v", err)
		fmt.Fprintf(os.Stderr, "pcmsink: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Printf("Shutting down...")
		cancel()
	}()

	if *noTUI {
		runHeadless(ctx, player)
		return
	}
	runTUI(ctx, player)
}

// runHeadless streams playback progress to the log.
func runHeadless(ctx context.Context, player *app.Player) {
	player.OnStatus(func(st app.Status) {
		state := "playing"
		if st.Paused {
			state = "paused"
		}
		if st.Done {
			state = "done"
		}
		log.Printf("%s: %d/%d ms, buffer free %d/%d",
			state, st.ElapsedMs, st.TotalMs, st.BufferFree, st.BufferCap)
	})

	if err := player.Run(ctx); err != nil {
		log.Printf("playback failed: %v", err)
		os.Exit(1)
	}
}

// runTUI drives the bubbletea interface while playback runs.
func runTUI(ctx context.Context, player *app.Player) {
	prog := ui.Run(player)
	player.OnStatus(func(st app.Status) {
		prog.Send(ui.StatusMsg{Status: st})
	})

	errCh := make(chan error, 1)
	go func() {
		err := player.Run(ctx)
		if err != nil {
			prog.Quit()
		}
		errCh <- err
	}()

	if _, err := prog.Run(); err != nil {
		log.Printf("TUI failed: %v", err)
	}

	// TUI is gone (quit key or playback done); stop the engine
	player.Stop()
	if err := <-errCh; err != nil {
		log.Printf("playback failed: %v", err)
		fmt.Fprintf(os.Stderr, "pcmsink: %v\n", err)
		os.Exit(1)
	}
}
