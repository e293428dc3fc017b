package apiconfig

import (
	"fmt"
	"slices"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/predictgen/internal/compileerr"
	"github.com/vk/predictgen/internal/ctyval"
)

// Strategy is a conflict resolution strategy.
type Strategy string

const (
	AutoMerge             Strategy = "AUTOMERGE"
	OptimisticConcurrency Strategy = "OPTIMISTIC_CONCURRENCY"
	LambdaResolution      Strategy = "LAMBDA"
)

// Strategies lists the supported strategies in the order they are offered.
var Strategies = []Strategy{AutoMerge, OptimisticConcurrency, LambdaResolution}

// Resolution is one strategy choice. LambdaARN is required for LAMBDA and
// ignored otherwise.
type Resolution struct {
	Strategy  Strategy
	LambdaARN string
}

// ModelOverride replaces the default resolution for one model type.
type ModelOverride struct {
	Model string
	Resolution
}

// ConflictDetection holds the versioned-data conflict settings of an API.
type ConflictDetection struct {
	Default  Resolution
	PerModel []ModelOverride
}

// DecodeConflict reads a conflict block of the form
//
//	{ strategy = "LAMBDA", lambda_arn = "...", models = [{ model = "Post", strategy = "AUTOMERGE" }] }
//
// A null block means conflict detection is off and yields nil.
func DecodeConflict(v cty.Value) (*ConflictDetection, error) {
	if !ctyval.IsSet(v) {
		return nil, nil
	}
	def, err := decodeResolution(v, "")
	if err != nil {
		return nil, err
	}
	cd := &ConflictDetection{Default: def}

	models, _ := ctyval.Attr(v, "models")
	elems, err := ctyval.Elements(models)
	if err != nil {
		return nil, conflictErr(fmt.Errorf("models: %w", err))
	}
	seen := map[string]bool{}
	for _, e := range elems {
		model, ok, err := ctyval.String(e, "model")
		if err != nil {
			return nil, conflictErr(err)
		}
		if !ok {
			return nil, &compileerr.ConfigError{Variant: "conflict detection", Missing: []string{"model"}}
		}
		if seen[model] {
			return nil, conflictErr(fmt.Errorf("model %q overridden more than once", model))
		}
		seen[model] = true
		res, err := decodeResolution(e, model)
		if err != nil {
			return nil, err
		}
		cd.PerModel = append(cd.PerModel, ModelOverride{Model: model, Resolution: res})
	}
	return cd, nil
}

func decodeResolution(v cty.Value, model string) (Resolution, error) {
	strategy, ok, err := ctyval.String(v, "strategy")
	if err != nil {
		return Resolution{}, conflictErr(err)
	}
	if !ok {
		return Resolution{}, &compileerr.ConfigError{Variant: "conflict detection", Missing: []string{"strategy"}}
	}
	res := Resolution{Strategy: Strategy(strategy)}
	if !slices.Contains(Strategies, res.Strategy) {
		return Resolution{}, conflictErr(fmt.Errorf("unknown strategy %q", strategy))
	}
	if res.Strategy == LambdaResolution {
		arn, ok, err := ctyval.String(v, "lambda_arn")
		if err != nil {
			return Resolution{}, conflictErr(err)
		}
		if !ok || arn == "" {
			variant := "LAMBDA conflict handler"
			if model != "" {
				variant += " for " + model
			}
			return Resolution{}, &compileerr.ConfigError{Variant: variant, Missing: []string{"lambda_arn"}}
		}
		res.LambdaARN = arn
	}
	return res, nil
}

func conflictErr(err error) error {
	return &compileerr.ConfigError{Variant: "conflict detection", Err: err}
}
