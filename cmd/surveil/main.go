/*
DESCRIPTION
  surveil is a command line client of the surveil package. It reads JPEG
  images from a file or directory, separates moving foreground from a learnt
  background and writes the frames that contain motion.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  Dan Kortschak <dan@ausocean.org>
  Scott Barnard <scott@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package surveil is a command line client for the surveil package.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/motion/surveil"
	"github.com/ausocean/motion/surveil/config"
	"github.com/ausocean/utils/logging"
)

// Current software version.
const version = "v0.1.0"

// Logging configuration.
const (
	logMaxSize   = 500 // MB
	logMaxBackup = 10
	logMaxAge    = 28 // days
	logVerbosity = logging.Info
	logSuppress  = true
)

// Misc constants.
const (
	bitrateInterval = 60 * time.Second
	profilePath     = "surveil.prof"
	pkg             = "surveil: "
)

// This is set to true if the 'profile' build tag is provided on build.
var canProfile = false

func main() {
	showVersion := flag.Bool("version", false, "show version")
	logPath := flag.String("log", "surveil.log", "path of the log file")

	// Each config variable can be given as a flag of the same name.
	vals := make(map[string]*string, len(config.Variables))
	for _, v := range config.Variables {
		vals[v.Name] = flag.String(v.Name, "", v.Type)
	}
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Create lumberjack logger to handle logging to file.
	fileLog := &lumberjack.Logger{
		Filename:   *logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	defer fileLog.Close()

	// Create logger that we call methods on to log, which in turn writes to the
	// lumberjack logger and stderr.
	log := logging.New(logVerbosity, io.MultiWriter(fileLog, os.Stderr), logSuppress)

	log.Info("starting surveil", "version", version)

	// If surveil has been built with the profile tag, then we'll start a CPU profile.
	if canProfile {
		profile(log)
		defer pprof.StopCPUProfile()
		log.Info("profiling started")
	}

	vars := make(map[string]string)
	flag.Visit(func(f *flag.Flag) {
		if _, ok := vals[f.Name]; ok {
			vars[f.Name] = f.Value.String()
		}
	})
	log.Debug("got vars", "vars", vars)

	log.Debug("initialising surveil")
	sv, err := surveil.New(config.Config{Logger: log})
	if err != nil {
		log.Fatal(pkg+"could not initialise surveil", "error", err.Error())
	}

	err = sv.Update(vars)
	if err != nil {
		log.Fatal(pkg+"could not update surveil config", "error", err.Error())
	}

	err = sv.Start()
	if err != nil {
		log.Fatal(pkg+"could not start surveil", "error", err.Error())
	}
	log.Info("surveil started")

	run(sv, log)

	sv.Stop()
	log.Info("surveil stopped")
}

// run waits for the input to be processed or for the process to be
// interrupted, logging the output bitrate periodically.
func run(sv *surveil.Surveil, l logging.Logger) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	ticker := time.NewTicker(bitrateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-sv.Done():
			l.Info("input finished")
			return
		case s := <-sig:
			l.Info("received signal", "signal", s.String())
			return
		case <-ticker.C:
			l.Info("output bitrate", "bitrate", sv.Bitrate())
		}
	}
}

// profile opens a file to hold CPU profiling metrics and then starts the
// CPU profiler.
func profile(l logging.Logger) {
	f, err := os.Create(profilePath)
	if err != nil {
		l.Fatal(pkg+"could not create CPU profile", "error", err.Error())
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		l.Fatal(pkg+"could not start CPU profile", "error", err.Error())
	}
}
