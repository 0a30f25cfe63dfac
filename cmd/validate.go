package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/anchorageoss/checkreceipt/input"
	"github.com/anchorageoss/checkreceipt/receipt"
	"github.com/anchorageoss/checkreceipt/verify"
)

// UsageText is printed when no recognized flag combination is supplied.
const UsageText = `Usage:
checkreceipt [-i receipt_path --uuid uuid] [--json-string base64_receipt --uuid uuid] [--json]
--json	streamed input {"receipt":base64_encoded_receipt,"uuid":uuid_string_representation}
`

// ValidateCommand creates the receipt validation command
func ValidateCommand() *cli.Command {
	return &cli.Command{
		Name:      "checkreceipt",
		Usage:     "Verify an installation receipt is bound to a device and application",
		UsageText: UsageText,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "i",
				Usage: "Path to a DER receipt file",
			},
			&cli.StringFlag{
				Name:  "uuid",
				Usage: "Device identifier (UUID text)",
			},
			&cli.StringFlag{
				Name:  "json-string",
				Usage: "Base64-encoded receipt",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: `Read {"receipt":...,"uuid":...} from standard input`,
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log each validation step to stderr",
			},
			&cli.BoolFlag{
				Name:  "constant-time",
				Usage: "Compare digests in constant time",
			},
		},
		Action: runValidateCommand,
		OnUsageError: func(ctx context.Context, cmd *cli.Command, err error, isSubcommand bool) error {
			fmt.Fprint(cmd.Root().Writer, UsageText)
			return cli.Exit("", 1)
		},
	}
}

func runValidateCommand(ctx context.Context, cmd *cli.Command) error {
	root := cmd.Root()
	logger := newLogger(root.ErrWriter, cmd.Bool("verbose"))

	req, err := input.Classify(input.Flags{
		ReceiptPath: cmd.String("i"),
		UUID:        cmd.String("uuid"),
		JSONString:  cmd.String("json-string"),
		JSON:        cmd.Bool("json"),
	})
	if err != nil {
		fmt.Fprint(root.Writer, UsageText)
		return cli.Exit("", 1)
	}
	logger.DebugContext(ctx, "input classified", "mode", req.Mode().String())

	var opts []verify.Option
	if cmd.Bool("constant-time") {
		opts = append(opts, verify.WithConstantTimeCompare())
	}

	r := &runner{
		service:   verify.NewService(logger, opts...),
		formatter: verify.NewFormatter(),
		out:       root.Writer,
		logger:    logger,
	}

	switch req := req.(type) {
	case input.FileRequest:
		return r.runFile(ctx, req)
	case input.LiteralRequest:
		return r.runStructured(ctx, req)
	case input.StreamedRequest:
		literal, err := input.ReadStreamed(root.Reader)
		if err != nil {
			logger.WarnContext(ctx, "failed to read streamed input", "error", err)
			return r.structuredError()
		}
		return r.runStructured(ctx, literal)
	default:
		return fmt.Errorf("unsupported request %T", req)
	}
}

// runner renders one validation for the selected input mode
type runner struct {
	service   *verify.Service
	formatter *verify.Formatter
	out       io.Writer
	logger    *slog.Logger
}

// runStructured validates literal receipt text and reports JSON. Only
// completed verifications exit with 0.
func (r *runner) runStructured(ctx context.Context, req input.LiteralRequest) error {
	result, err := r.service.ValidateBase64(ctx, req.Receipt, req.UUID)
	if err != nil {
		if !isVerificationFailure(err) {
			r.logger.WarnContext(ctx, "failed to decode input", "error", err)
			return r.structuredError()
		}
		r.logger.WarnContext(ctx, "receipt rejected", "error", err)
		result = &verify.ValidateResult{Outcome: verify.OutcomeMalformed}
	}

	if err := r.formatter.WriteStructured(r.out, result.Outcome); err != nil {
		return fmt.Errorf("failed to report result: %w", err)
	}
	return nil
}

// runFile validates an envelope file and reports a plain line. The exit
// code is 0 only for a valid receipt.
func (r *runner) runFile(ctx context.Context, req input.FileRequest) error {
	envelope, err := input.ReadFile(req.Path)
	if errors.Is(err, input.ErrFileNotFound) {
		r.logger.WarnContext(ctx, "failed to open receipt", "path", req.Path, "error", err)
		if err := r.formatter.WriteNotFound(r.out); err != nil {
			return fmt.Errorf("failed to report result: %w", err)
		}
		return cli.Exit("", 1)
	}

	outcome := verify.OutcomeMalformed
	if err != nil {
		r.logger.WarnContext(ctx, "failed to read receipt", "path", req.Path, "error", err)
	} else {
		r.logger.DebugContext(ctx, "read receipt file", "path", req.Path, "envelope_len", len(envelope))
		result, err := r.service.Validate(ctx, envelope, req.UUID)
		if err != nil {
			r.logger.WarnContext(ctx, "receipt rejected", "error", err)
		} else {
			outcome = result.Outcome
		}
	}

	if err := r.formatter.WriteLine(r.out, outcome); err != nil {
		return fmt.Errorf("failed to report result: %w", err)
	}
	if outcome != verify.OutcomeValid {
		return cli.Exit("", 1)
	}
	return nil
}

func (r *runner) structuredError() error {
	if err := r.formatter.WriteStructuredError(r.out); err != nil {
		return fmt.Errorf("failed to report result: %w", err)
	}
	return cli.Exit("", 1)
}

// isVerificationFailure reports whether err happened after the input was
// decoded, so the receipt itself is at fault rather than the input text.
func isVerificationFailure(err error) bool {
	return errors.Is(err, receipt.ErrEnvelopeDecode) || errors.Is(err, receipt.ErrPayloadDecode)
}
