package main

import (
	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"k8s.io/klog/v2"
)

// warner is the part of the result tree that accepts inline warnings.
type warner interface {
	Warn(msg string)
}

// warnLogger routes log lines into the tree so they never tear a frame.
// Verbosity follows klog's -v flag.
func warnLogger(w warner) logr.Logger {
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			args = prefix + ": " + args
		}
		w.Warn(args)
	}, funcr.Options{Verbosity: klogVerbosity()})
}

func klogVerbosity() int {
	v := 0
	for klog.V(klog.Level(v + 1)).Enabled() {
		v++
		if v >= 10 {
			break
		}
	}
	return v
}
