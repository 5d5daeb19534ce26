// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// spselect runs enote input selection against an in-memory store of records
// described on the command line and prints the chosen inputs.
//
// Example:
//
//	spselect --legacy=5 --legacy=3 --seraphis=7 --output=9 \
//		--feemodel=stepped --stepsize=2 --feerate=1
package main

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/btcsuite/spwallet/enotestore"
	"github.com/btcsuite/spwallet/feecalc"
	"github.com/btcsuite/spwallet/inputselect"
	"github.com/btcsuite/spwallet/outputctx"
	"github.com/btcsuite/spwallet/pkg/spunit"
	flags "github.com/jessevdk/go-flags"
)

// errUnknownChoice is returned when a choice flag holds a value the parser
// accepted but this program does not handle.
var errUnknownChoice = errors.New("unknown choice")

func main() {
	if err := spselectMain(os.Args[1:]); err != nil {
		// The flags parser has already printed its own errors.
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}

			os.Exit(1)
		}

		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// spselectMain is the real main function for spselect. It is necessary to
// work around the fact that deferred functions do not run when os.Exit() is
// called.
func spselectMain(args []string) error {
	cfg, _, err := loadConfig(args)
	if err != nil {
		return err
	}

	err = initLogRotator(filepath.Join(cfg.LogDir, defaultLogFilename))
	if err != nil {
		return err
	}
	defer closeLogRotator()

	setLogLevels(cfg.DebugLevel)

	return runSelection(cfg, os.Stdout)
}

// keyImageFor returns a key image unique to the kind and index of a record
// given on the command line.
func keyImageFor(kind inputselect.Kind, index int) inputselect.KeyImage {
	var keyImage inputselect.KeyImage
	keyImage[0] = byte(kind) + 1
	binary.BigEndian.PutUint64(keyImage[1:9], uint64(index))

	return keyImage
}

// fillStore adds a record for every amount in the config.
func fillStore(cfg *config) (*enotestore.Store, error) {
	store := enotestore.NewStore()

	byKind := map[inputselect.Kind][]uint64{
		inputselect.KindLegacy:   cfg.Legacy,
		inputselect.KindSeraphis: cfg.Seraphis,
	}
	for _, kind := range inputselect.Kinds {
		for i, amount := range byKind[kind] {
			keyImage := keyImageFor(kind, i)

			// Onetime addresses are unique so the legacy duplicate
			// rule never applies.
			var address enotestore.OnetimeAddress
			copy(address[:], keyImage[:])

			err := store.AddRecord(enotestore.ContextualRecord{
				Record: inputselect.Record{
					Kind:     kind,
					Amount:   spunit.Amount(amount),
					KeyImage: keyImage,
				},
				OnetimeAddress: address,
				Origin:         enotestore.OriginOnchain,
			})
			if err != nil {
				return nil, err
			}
		}
	}

	return store, nil
}

// newFeeCalculator returns the fee calculator named by the config.
func newFeeCalculator(cfg *config) (inputselect.FeeCalculator, error) {
	switch cfg.FeeModel {
	case "trivial":
		return feecalc.Trivial{}, nil

	case "simple":
		return feecalc.Simple{}, nil

	case "stepped":
		return feecalc.NewInputsStepped(cfg.StepSize), nil

	case "weighted":
		if cfg.Discretize {
			return feecalc.NewDiscretizedWeighted(
				feecalc.DefaultWeightParams,
				spunit.DefaultFeeLevels,
			)
		}

		return feecalc.NewWeighted(feecalc.DefaultWeightParams)

	default:
		return nil, fmt.Errorf("%w: fee model %q", errUnknownChoice,
			cfg.FeeModel)
	}
}

// newOutputContext returns the output set context named by the config.
func newOutputContext(cfg *config) (inputselect.OutputSetContext, error) {
	switch cfg.OutputMode {
	case "simple":
		amounts := make([]spunit.Amount, 0, len(cfg.Outputs))
		for _, amount := range cfg.Outputs {
			amounts = append(amounts, spunit.Amount(amount))
		}

		return outputctx.NewSimple(amounts, cfg.AdditionalOutputs), nil

	case "v1":
		// Every proposal gets its own ephemeral pubkey.
		var next uint64
		pubkey := func() outputctx.EphemeralPubkey {
			var pk outputctx.EphemeralPubkey
			next++
			binary.BigEndian.PutUint64(pk[:8], next)

			return pk
		}

		normal := make([]outputctx.PaymentProposal, 0, len(cfg.Outputs))
		for _, amount := range cfg.Outputs {
			normal = append(normal, outputctx.PaymentProposal{
				Amount:          spunit.Amount(amount),
				EphemeralPubkey: pubkey(),
			})
		}

		selfSends := make(
			[]outputctx.SelfSendProposal, 0, len(cfg.SelfSpends),
		)
		for _, amount := range cfg.SelfSpends {
			selfSends = append(selfSends, outputctx.SelfSendProposal{
				Amount:          spunit.Amount(amount),
				EphemeralPubkey: pubkey(),
				Type:            outputctx.SelfSendSelfSpend,
			})
		}

		return outputctx.NewV1(normal, selfSends)

	default:
		return nil, fmt.Errorf("%w: output mode %q", errUnknownChoice,
			cfg.OutputMode)
	}
}

// newSelector returns the record selector named by the config.
func newSelector(cfg *config, store *enotestore.Store,
	feeCalc inputselect.FeeCalculator) (inputselect.InputSelector, error) {

	var strategy enotestore.ArrangeStrategy
	switch cfg.Strategy {
	case "simple":
		return enotestore.NewSimpleSelector(store), nil

	case "ordered":
		strategy = enotestore.ArrangeOrdered

	case "largest":
		strategy = enotestore.ArrangeLargestFirst

	case "random":
		strategy = enotestore.ArrangeRandom

	default:
		return nil, fmt.Errorf("%w: strategy %q", errUnknownChoice,
			cfg.Strategy)
	}

	return enotestore.NewSelector(store, enotestore.SelectorConfig{
		Strategy: strategy,
		FeeRate:  spunit.FeePerWeight(cfg.FeeRate),
		FeeCalc:  feeCalc,
	}), nil
}

// runSelection builds the store, selector, fee calculator and output context
// described by the config, runs input selection and writes the result to w.
func runSelection(cfg *config, w io.Writer) error {
	store, err := fillStore(cfg)
	if err != nil {
		return err
	}

	feeCalc, err := newFeeCalculator(cfg)
	if err != nil {
		return err
	}

	outputCtx, err := newOutputContext(cfg)
	if err != nil {
		return err
	}

	selector, err := newSelector(cfg, store, feeCalc)
	if err != nil {
		return err
	}

	log.Infof("Selecting inputs for %v from %d legacy and %d seraphis "+
		"records", outputCtx.TotalAmount(), len(cfg.Legacy),
		len(cfg.Seraphis))

	selection, err := inputselect.TryGetInputSet(
		outputCtx, cfg.MaxInputs, selector,
		spunit.FeePerWeight(cfg.FeeRate), feeCalc,
	)
	if err != nil {
		return err
	}

	printSelection(w, selection)

	return nil
}

// printSelection writes a human readable summary of the selection.
func printSelection(w io.Writer, selection *inputselect.Selection) {
	fmt.Fprintf(w, "inputs:  %d\n", selection.Inputs.TotalCount())
	for _, rec := range selection.LegacyRecords() {
		fmt.Fprintf(w, "  legacy   %d\n", uint64(rec.Amount))
	}
	for _, rec := range selection.SeraphisRecords() {
		fmt.Fprintf(w, "  seraphis %d\n", uint64(rec.Amount))
	}
	fmt.Fprintf(w, "total:   %v\n", selection.Inputs.TotalAmount())
	fmt.Fprintf(w, "fee:     %d\n", uint64(selection.Fee))
	fmt.Fprintf(w, "change:  %v\n", selection.Change)
	fmt.Fprintf(w, "outputs: %d\n", selection.NumOutputs)
}
