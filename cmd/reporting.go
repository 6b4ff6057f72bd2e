package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/masmgr/codestat/internal/output"
)

func writeStatReport(c *cli.Context, rc *RunContext, format output.OutputFormat, report *output.StatReport) error {
	opts := rc.OutputOptions(c, format)
	writer := output.NewStatReportWriter(opts.Format)
	return writer.Write(report, opts)
}

func writeFinalLinesReport(c *cli.Context, rc *RunContext, format output.OutputFormat, report *output.FinalLinesReport) error {
	opts := rc.OutputOptions(c, format)
	writer := output.NewFinalLinesReportWriter(opts.Format)
	return writer.Write(report, opts)
}
