package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lbarthe/socwatch/core/format"
	"github.com/lbarthe/socwatch/core/model"
	"github.com/lbarthe/socwatch/core/sanitize"
)

var (
	flagCapacity string
	flagSoC      string
	flagCharge   string
	flagLoad     string
	flagReserve  string
	flagMax      string
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Print a one-shot estimate for the given pack parameters",
	Run:   runEstimate,
}

func init() {
	estimateCmd.Flags().StringVar(&flagCapacity, "capacity", "15.33", "pack capacity in kWh")
	estimateCmd.Flags().StringVar(&flagSoC, "soc", "100", "state of charge in percent")
	estimateCmd.Flags().StringVar(&flagCharge, "charge", "0", "charge power in kW")
	estimateCmd.Flags().StringVar(&flagLoad, "load", "0", "load power in kW")
	estimateCmd.Flags().StringVar(&flagReserve, "reserve", "20", "reserve SoC in percent")
	estimateCmd.Flags().StringVar(&flagMax, "max", "90", "max SoC in percent")
	rootCmd.AddCommand(estimateCmd)
}

func runEstimate(cmd *cobra.Command, args []string) {
	snap := model.Snapshot{
		CapacityKWh:   sanitize.Capacity(flagCapacity),
		SoC:           sanitize.Percent(flagSoC),
		ChargePowerKW: sanitize.Power(flagCharge),
		LoadPowerKW:   sanitize.Power(flagLoad),
		ReserveSoC:    sanitize.Percent(flagReserve),
		MaxSoC:        sanitize.Percent(flagMax),
	}
	est := model.Evaluate(snap)
	now := time.Now()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Status:       %s\n", est.Status)
	fmt.Fprintf(out, "SoC:          %.0f %%\n", est.GaugePercent)
	fmt.Fprintf(out, "Net power:    %s\n", format.Power(est.NetPowerKW))
	fmt.Fprintf(out, "Remaining:    %s\n", format.Energy(est.RemainingKWh))
	fmt.Fprintf(out, "Headroom:     %s\n", format.Energy(est.HeadroomKWh))
	fmt.Fprintf(out, "Time to full: %s", format.Duration(est.TimeToFullHours))
	if clock := format.Clock(now, est.TimeToFullHours); clock != "" {
		fmt.Fprintf(out, " (at %s)", clock)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Time to empty: %s", format.Duration(est.TimeToEmptyHours))
	if clock := format.Clock(now, est.TimeToEmptyHours); clock != "" {
		fmt.Fprintf(out, " (at %s)", clock)
	}
	fmt.Fprintln(out)
}
