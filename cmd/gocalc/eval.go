package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/njchilds90/gocalc/internal/evaluator"
	"github.com/njchilds90/gocalc/internal/report"
	"github.com/njchilds90/gocalc/internal/runner"
)

var errEvaluationFailed = errors.New("evaluation failed")

type evalOutput struct {
	Operation  evaluator.Operation `json:"operation"`
	Expression string              `json:"expression"`
	Typeset    string              `json:"typeset"`
	Text       string              `json:"text"`
	OK         bool                `json:"ok"`
}

func (a *app) evalCommand() *cobra.Command {
	var (
		opName   string
		withTeX  bool
		asJSON   bool
		savePath string
	)

	cmd := &cobra.Command{
		Use:   "eval [flags] EXPRESSION",
		Short: "Evaluate an expression",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := evaluator.ParseOperation(opName)
			if err != nil {
				return err
			}
			req := evaluator.Request{
				Operation:  op,
				Expression: strings.Join(args, " "),
				Variable:   a.cfg.Variable,
				Lower:      a.cfg.Lower,
				Upper:      a.cfg.Upper,
				Point:      a.cfg.Point,
			}

			var res evaluator.Result
			run := runner.New(a.eval, runner.WithLogger(a.log))
			if err := run.Submit(req, func(r evaluator.Result) { res = r }); err != nil {
				return err
			}
			run.Wait()

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(evalOutput{
					Operation:  op,
					Expression: req.Expression,
					Typeset:    res.Typeset,
					Text:       res.Text,
					OK:         res.OK(),
				}); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(out, res.Text)
				if withTeX && res.OK() {
					fmt.Fprintln(out, res.Typeset)
				}
			}

			if savePath != "" {
				entry := report.Entry{Time: time.Now(), Expression: req.Expression, Operation: op, Result: res}
				if err := report.Save(savePath, entry); err != nil {
					return err
				}
				a.log.Info().Str("path", savePath).Msg("result saved")
			}

			if !res.OK() {
				return errEvaluationFailed
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opName, "op", "o", "simplify", "Operation: derivative, integrate, definite, limit or simplify")
	f.StringVar(&a.cfg.Variable, "var", a.cfg.Variable, "Variable of differentiation, integration or limit")
	f.StringVar(&a.cfg.Lower, "lower", a.cfg.Lower, "Lower bound of a definite integral (oo for infinity)")
	f.StringVar(&a.cfg.Upper, "upper", a.cfg.Upper, "Upper bound of a definite integral (oo for infinity)")
	f.StringVar(&a.cfg.Point, "point", a.cfg.Point, "Limit point (oo for infinity)")
	f.BoolVar(&withTeX, "latex", false, "Also print the LaTeX rendering")
	f.BoolVar(&asJSON, "json", false, "Print the result as JSON")
	f.StringVar(&savePath, "save", "", "Write a text report of the result to this file")
	return cmd
}

func (a *app) renderCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "render EXPRESSION",
		Short: "Parse an expression and print its canonical and LaTeX forms",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := a.eval.Render(strings.Join(args, " "))
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, res.Text)
			if !res.OK() {
				return errEvaluationFailed
			}
			fmt.Fprintln(out, res.Typeset)
			return nil
		},
	}
}

func (a *app) opsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ops",
		Short: "List operations and the parameters they read",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			for _, op := range evaluator.Operations() {
				params := op.Params()
				if len(params) == 0 {
					fmt.Fprintln(out, op)
					continue
				}
				fmt.Fprintf(out, "%-20s %s\n", op, strings.Join(params, ", "))
			}
		},
	}
}
