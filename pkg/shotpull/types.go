package shotpull

import (
	"github.com/bianoble/shotpull/internal/config"
	"github.com/bianoble/shotpull/internal/engine"
	"github.com/bianoble/shotpull/internal/imagediff"
	"github.com/bianoble/shotpull/internal/transport"
)

// Type aliases re-export internal types as the public API.
// Users import "github.com/bianoble/shotpull/pkg/shotpull" and use
// shotpull.RunResult, shotpull.VerifyError, etc.

type Config = config.Config
type Device = config.Device

type RunOptions = engine.RunOptions
type RunResult = engine.RunResult
type PullResult = engine.PullResult
type RecordResult = engine.RecordResult
type VerifyResult = engine.VerifyResult
type Failure = engine.Failure
type VerifyError = engine.VerifyError
type ConfigError = engine.ConfigError

type DiffResult = imagediff.Result

type Transport = transport.Transport
type Runner = transport.Runner
type TransportError = transport.TransportError
