package consolidation

import (
	"context"
	"testing"
	"time"

	"github.com/loadaxis/fleetopt/core/model"
)

func TestFilterDropsLoadsOutsidePeriod(t *testing.T) {
	base := time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)
	opt := testOptimizer(stubEstimator{fallback: 100})
	driver := testDriver(base)
	period := window(base, 24)

	inside := testLoad("in", "toledo_oh", "lansing_mi", 1000, 1, 100, base)
	late := testLoad("late", "toledo_oh", "lansing_mi", 1000, 1, 100, base.Add(48*time.Hour))

	got := opt.FilterCompatibleLoads(context.Background(), []model.Load{inside, late}, driver, period)
	if len(got) != 1 || got[0].ID != "in" {
		t.Fatalf("expected only the in-period load, got %+v", got)
	}
}

func TestFilterHonorsPreferredRegions(t *testing.T) {
	base := time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)
	opt := testOptimizer(stubEstimator{fallback: 100})
	driver := testDriver(base)
	driver.PreferredRegions = []string{"midwest"}
	period := window(base, 72)

	mid := testLoad("mid", "toledo_oh", "lansing_mi", 1000, 1, 100, base)
	east := testLoad("east", "albany_ny", "boston_ma", 1000, 1, 100, base)

	got := opt.FilterCompatibleLoads(context.Background(), []model.Load{mid, east}, driver, period)
	if len(got) != 1 || got[0].ID != "mid" {
		t.Fatalf("expected only the midwest load, got %+v", got)
	}
}

func TestFilterHaulLengthPreferences(t *testing.T) {
	base := time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)
	est := stubEstimator{miles: map[[2]string]float64{
		{"a", "b"}: 120,
		{"c", "d"}: 700,
	}}
	opt := testOptimizer(est)
	period := window(base, 72)

	short := testLoad("short", "a", "b", 1000, 1, 100, base)
	long := testLoad("long", "c", "d", 1000, 1, 100, base)

	local := testDriver(base)
	local.Preferences.PreferLocal = true
	got := opt.FilterCompatibleLoads(context.Background(), []model.Load{short, long}, local, period)
	if len(got) != 1 || got[0].ID != "short" {
		t.Fatalf("local driver should keep only the short load, got %+v", got)
	}

	hauler := testDriver(base)
	hauler.Preferences.PreferLongHaul = true
	got = opt.FilterCompatibleLoads(context.Background(), []model.Load{short, long}, hauler, period)
	if len(got) != 1 || got[0].ID != "long" {
		t.Fatalf("long-haul driver should keep only the long load, got %+v", got)
	}
}

func TestDefaultRegion(t *testing.T) {
	cases := map[string]string{
		"baltimore_md": "northeast",
		"dallas_tx":    "southwest",
		"fresno_ca":    "west",
		"miami_fl":     "southeast",
		"toledo_oh":    "midwest",
		"nowhere":      "midwest",
	}
	for loc, want := range cases {
		if got := DefaultRegion(loc); got != want {
			t.Errorf("DefaultRegion(%q) = %q, want %q", loc, got, want)
		}
	}
}
