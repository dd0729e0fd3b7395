package report

import "github.com/fieldsales/backend/internal/domain/sales"

// Channel-wise report columns
const (
	ColCategory          = "Category Wise"
	ColTargetVol         = "Target Vol"
	ColMtdVol            = "Mtd Vol"
	ColLmtdVol           = "Lmtd Vol"
	ColPendingVol        = "Pending Vol"
	ColADS               = "ADS"
	ColReqADS            = "Req. ADS"
	ColGrowthVol         = "% Gwth Vol"
	ColTargetSO          = "Target SO"
	ColActivationMTD     = "Activation MTD"
	ColActivationLMTD    = "Activation LMTD"
	ColPendingAct        = "Pending Act"
	ColADSActivation     = "ADS Activation"
	ColReqADSActivation  = "Req. ADS Activation"
	ColGrowthVal         = "% Gwth Val"
	ColFTD               = "FTD"
	ColContributionShare = "Contribution %"
)

// ChannelColumns is the column order of the channel-wise report
var ChannelColumns = []string{
	ColCategory, ColTargetVol, ColMtdVol, ColLmtdVol, ColPendingVol, ColADS, ColReqADS,
	ColGrowthVol, ColTargetSO, ColActivationMTD, ColActivationLMTD, ColPendingAct,
	ColADSActivation, ColReqADSActivation, ColGrowthVal, ColFTD, ColContributionShare,
}

// KnownChannels is the fixed row universe of the channel-wise report, in
// display order
var KnownChannels = []string{
	"DCM", "PC", "SCP", "SIS Plus", "SIS PRO", "STAR DCM", "SES", "SDP", "RRF EXT", "SES-LITE",
}

// ChannelPeriodDays is the default month length the required pace is spread
// over, whatever the calendar says
const ChannelPeriodDays = 30

// ChannelInput feeds BuildChannelReport. Aggregations are grouped by
// DimOutletType over Sell Out records of the request scope.
type ChannelInput struct {
	Window  Window
	Measure Measure
	Current *Aggregation
	Prior   *Aggregation
	FTD     *Aggregation
	Targets []*sales.ChannelTarget
	// PeriodDays overrides ChannelPeriodDays when positive
	PeriodDays int
}

// channelLine is the additive part of one channel row
type channelLine struct {
	target   int64
	cur      int64
	prev     int64
	targetSO int64
	ftd      int64
}

func (l channelLine) add(o channelLine) channelLine {
	return channelLine{
		target:   l.target + o.target,
		cur:      l.cur + o.cur,
		prev:     l.prev + o.prev,
		targetSO: l.targetSO + o.targetSO,
		ftd:      l.ftd + o.ftd,
	}
}

func (l channelLine) isZero() bool { return l == channelLine{} }

func (l channelLine) row(label string, daysPassed, periodDays int, totalCur int64, zeroFill bool) Row {
	pending := Pending(l.target, l.cur)
	ads := Ratio(AverageDaySale(l.cur, daysPassed))
	pace := RequiredPace(pending, daysPassed, periodDays)
	growth := Growth(l.cur, l.prev)
	if zeroFill {
		pace = Ratio(decimalZero)
		growth = Ratio(decimalZero)
	}
	return newRow(ChannelColumns, []Cell{
		Text(label),
		Int(l.target),
		Int(l.cur),
		Int(l.prev),
		Int(pending),
		ads,
		pace,
		growth,
		Int(l.targetSO),
		Int(l.cur),
		Int(l.prev),
		Int(pending),
		ads,
		pace,
		growth,
		Int(l.ftd),
		Contribution(l.cur, totalCur),
	})
}

type targetPair struct{ volume, value int64 }

func sumTargets(targets []*sales.ChannelTarget) map[string]targetPair {
	out := make(map[string]targetPair)
	for _, t := range targets {
		if t == nil {
			continue
		}
		p := out[t.Channel]
		p.volume += sales.CoerceInt(t.TargetVolume)
		p.value += sales.CoerceInt(t.TargetValue)
		out[t.Channel] = p
	}
	return out
}

// BuildChannelReport assembles the channel-wise report over KnownChannels.
// A channel without sales in any window and without a target is a zero row
// whose growth reads 0 rather than N/A.
func BuildChannelReport(in ChannelInput) *Report {
	targets := sumTargets(in.Targets)
	periodDays := in.PeriodDays
	if periodDays <= 0 {
		periodDays = ChannelPeriodDays
	}

	lines := make([]channelLine, len(KnownChannels))
	zero := make([]bool, len(KnownChannels))
	var total channelLine
	for i, ch := range KnownChannels {
		cur, hasCur := in.Current.Lookup(ch)
		prev, hasPrev := in.Prior.Lookup(ch)
		ftd, hasFTD := in.FTD.Lookup(ch)

		var l channelLine
		if hasCur {
			l.cur = cur.Current
			l.target = cur.Target
		}
		if hasPrev {
			l.prev = prev.Current
		}
		if hasFTD {
			l.ftd = ftd.Current
		}
		// Target Vol follows the measure like the other Vol columns; the
		// header text is fixed
		if t, ok := targets[ch]; ok {
			l.target = t.volume
			if in.Measure == MeasureValue {
				l.target = t.value
			}
			l.targetSO = t.value
		}

		lines[i] = l
		zero[i] = !hasCur && !hasPrev && !hasFTD && l.isZero()
		total = total.add(l)
	}

	rows := make([]Row, len(KnownChannels))
	for i, ch := range KnownChannels {
		rows[i] = lines[i].row(ch, in.Window.DaysPassed, periodDays, total.cur, zero[i])
	}
	return newReport(ChannelColumns, ColCategory, total.row(GrandTotalLabel, in.Window.DaysPassed, periodDays, total.cur, false), rows)
}
