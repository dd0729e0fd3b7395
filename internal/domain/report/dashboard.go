package report

import (
	"strconv"
	"strings"

	"github.com/fieldsales/backend/internal/domain/sales"
)

// Dashboard is the sell-in / sell-out summary tile set
type Dashboard struct {
	TDSellIn      string `json:"td_sell_in"`
	LTDSellIn     string `json:"ltd_sell_in"`
	SellInGrowth  string `json:"sell_in_growth"`
	TDSellOut     string `json:"td_sell_out"`
	LTDSellOut    string `json:"ltd_sell_out"`
	SellOutGrowth string `json:"sell_out_growth"`
}

// DashboardInput feeds BuildDashboard with two passes grouped by
// DimSalesType
type DashboardInput struct {
	Current *Aggregation
	Prior   *Aggregation
}

type dashboardLine struct {
	sellIn  int64
	sellOut int64
}

func foldSalesTypes(a *Aggregation) dashboardLine {
	var l dashboardLine
	for _, k := range a.Keys() {
		g := a.Get(k)
		switch st := sales.SalesType(k); {
		case st.IsSellIn():
			l.sellIn += g.Current
		case st == sales.SalesTypeSellOut:
			l.sellOut += g.Current
		}
	}
	return l
}

// BuildDashboard folds Sell In and Sell Thru2 into the sell-in bucket and
// Sell Out into the sell-out bucket. Other sales types are ignored.
func BuildDashboard(in DashboardInput) Dashboard {
	cur, prev := foldSalesTypes(in.Current), foldSalesTypes(in.Prior)
	d := Dashboard{}
	d.TDSellIn, d.LTDSellIn, d.SellInGrowth = dashboardTile(cur.sellIn, prev.sellIn)
	d.TDSellOut, d.LTDSellOut, d.SellOutGrowth = dashboardTile(cur.sellOut, prev.sellOut)
	return d
}

func dashboardTile(cur, prev int64) (td, ltd, growth string) {
	td = FormatIndian(cur)
	if prev == 0 {
		return td, NotAvailable, NotAvailable
	}
	return td, FormatIndian(prev), Growth(cur, prev).String() + "%"
}

// FormatIndian groups digits the Indian way: the last three, then pairs
// (1234567 -> 12,34,567).
func FormatIndian(n int64) string {
	digits := strconv.FormatInt(n, 10)
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}
	if len(digits) <= 3 {
		return sign + digits
	}

	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var b strings.Builder
	b.WriteString(sign)
	if len(head)%2 == 1 {
		b.WriteString(head[:1])
		b.WriteByte(',')
		head = head[1:]
	}
	for i := 0; i < len(head); i += 2 {
		b.WriteString(head[i : i+2])
		b.WriteByte(',')
	}
	b.WriteString(tail)
	return b.String()
}
