package maint

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"cloud.google.com/go/civil"
	collectorstore "github.com/dalemusser/greenlink/internal/app/store/collectors"
	householdstore "github.com/dalemusser/greenlink/internal/app/store/households"
	userstore "github.com/dalemusser/greenlink/internal/app/store/users"
	"github.com/dalemusser/greenlink/internal/app/system/authutil"
	"github.com/dalemusser/greenlink/internal/app/system/normalize"
	"github.com/dalemusser/greenlink/internal/domain/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SeedPassword is the password of every seeded account.
const SeedPassword = "password123"

// SeedAdminEmail is the seeded administrator's login.
const SeedAdminEmail = "admin@panchayat.in"

type seedCollector struct {
	Name  string
	Phone string
	Email string
	Wards []int
	Total int64
}

// Each seeded collector covers two wards of eight, without overlap.
var seedCollectors = []seedCollector{
	{"Sumesh V.", "9847012345", "sumesh@panchayat.in", []int{1, 2}, 142},
	{"Radhamani Amma", "9446054321", "radhamani@panchayat.in", []int{3, 4}, 128},
	{"Abdul Khader", "9895098765", "abdul@panchayat.in", []int{5, 6}, 135},
	{"Lissy Jacob", "9745011223", "lissy@panchayat.in", []int{7, 8}, 98},
}

// resetCollectors overlap so every ward has two candidates.
var resetCollectors = []seedCollector{
	{"Sumesh V.", "9847012345", "sumesh@panchayat.in", []int{1, 2}, 0},
	{"Radhamani Amma", "9446054321", "radhamani@panchayat.in", []int{1, 3}, 0},
	{"Abdul Khader", "9895098765", "abdul@panchayat.in", []int{2, 4}, 0},
	{"Lissy Jacob", "9745011223", "lissy@panchayat.in", []int{3, 5}, 0},
	{"Vijayan K.", "9846011224", "vijayan@panchayat.in", []int{4, 6}, 0},
	{"Saritha P.", "9447011225", "saritha@panchayat.in", []int{5, 7}, 0},
	{"Ramesh Babu", "9847011226", "ramesh@panchayat.in", []int{6, 8}, 0},
	{"Priya Nair", "9447011227", "priya@panchayat.in", []int{7, 1}, 0},
	{"Jose Mathew", "9847011228", "jose@panchayat.in", []int{8, 2}, 0},
	{"Deepa S.", "9447011229", "deepa@panchayat.in", []int{3, 6}, 0},
	{"Anil Kumar", "9847011230", "anil@panchayat.in", []int{4, 8}, 0},
	{"Mini Thomas", "9447011231", "mini@panchayat.in", []int{5, 2}, 0},
}

var seedHouseholds = []struct{ Name, Address string }{
	{"Ramachandran Pillai", "Sree Nilayam, Ward 1"},
	{"Najeeb Khan", "Baitul Noor, Ward 1"},
	{"Savithri Antharjanam", "Illathu Veedu, Ward 1"},
	{"Thomas Chacko", "Puthenpurayil, Ward 2"},
	{"Khadija Beevi", "Thangal's House, Ward 2"},
	{"Sukumaran K.", "Kizhakkethil, Ward 2"},
	{"Saritha Nair", "Vrindavan, Ward 3"},
	{"Ibrahim Kutty", "Kalluvettil House, Ward 3"},
	{"Mariamma Varghese", "Bethany Villa, Ward 4"},
	{"Raghavan Kartha", "Karthika, Ward 4"},
	{"Sunitha S.", "Sivadam, Ward 5"},
	{"Muhammed Shafi", "Shafi Manzil, Ward 5"},
	{"Leela Ramakrishnan", "Krishna Kripa, Ward 6"},
	{"George Kutty", "Pulimoottil, Ward 6"},
	{"Bindu Panicker", "Panickassery, Ward 7"},
	{"Siddharthan K.P.", "K.P. Niwas, Ward 8"},
}

var (
	houseNames = []string{"Sree Nilayam", "Baitul Noor", "Illathu Veedu", "Puthenpurayil", "Thangal's House",
		"Kizhakkethil", "Vrindavan", "Kalluvettil", "Bethany Villa", "Karthika", "Sivadam", "Shafi Manzil",
		"Krishna Kripa", "Pulimoottil", "Panickassery", "K.P. Niwas", "Udayam", "Deepam", "Souparnika", "Ashraya"}
	firstNames = []string{"Ramachandran", "Najeeb", "Savithri", "Thomas", "Khadija", "Sukumaran", "Ibrahim",
		"Mariamma", "Raghavan", "Sunitha", "Muhammed", "Leela", "George", "Bindu", "Siddharthan"}
	lastNames = []string{"Pillai", "Khan", "Antharjanam", "Chacko", "Beevi", "Nair", "Kutty", "Varghese",
		"Kartha", "Shafi", "Ramakrishnan", "Panicker"}
)

const (
	resetHouseholdCount = 60
	seedWards           = 8
	baseLat             = 10.85
	baseLng             = 76.27
)

var seedFee = decimal.NewFromInt(100)

// SeedReport counts what Seed and ResetAndSeed wrote.
type SeedReport struct {
	Accounts   int
	Collectors int
	Households int
	Skipped    int
}

// Seed adds an administrator, four collectors with logins, and sixteen
// households. Records that already exist are left alone, so it can be run
// more than once.
func (t *Tool) Seed(ctx context.Context) (SeedReport, error) {
	var rep SeedReport
	hash, err := authutil.HashPasswordFast(SeedPassword)
	if err != nil {
		return rep, err
	}

	if err := t.seedAccount(ctx, &rep, models.User{
		FullName: "Panchayat Admin", Email: SeedAdminEmail, Role: models.RoleAdmin, PasswordHash: hash,
	}); err != nil {
		return rep, err
	}

	for _, sc := range seedCollectors {
		if err := t.seedCollector(ctx, &rep, sc, hash); err != nil {
			return rep, err
		}
	}

	collectors, err := t.collectors.ListByCreation(ctx)
	if err != nil {
		return rep, fmt.Errorf("list collectors: %w", err)
	}

	today := t.Cal.Today()
	for i, sh := range seedHouseholds {
		phone := "98470" + strconv.Itoa(54300+i)
		if _, err := t.households.GetByPhone(ctx, phone); err == nil {
			rep.Skipped++
			continue
		} else if !errors.Is(err, householdstore.ErrNotFound) {
			return rep, fmt.Errorf("look up household: %w", err)
		}

		ward, ok := normalize.WardFromAddress(sh.Address)
		if !ok {
			ward = 1
		}
		h := models.Household{
			ResidentName:       sh.Name,
			Address:            sh.Address,
			Ward:               ward,
			Phone:              phone,
			MonthlyFee:         seedFee,
			PaymentStatus:      seedPaymentStatus(i),
			CollectionStatus:   models.CollectionCollected,
			LastCollectionDate: today,
			AssignedCollector:  models.Unassigned,
			Lat:                t.jitter(baseLat, 0.05),
			Lng:                t.jitter(baseLng, 0.05),
			WetWaste:           t.weight(2.0, 2.0),
			DryWaste:           t.weight(1.0, 1.5),
			RejectWaste:        t.weight(0.1, 0.2),
		}
		if i%10 == 0 {
			h.CollectionStatus = models.CollectionPending
			h.LastCollectionDate = civil.Date{}
		}
		if c := firstCovering(collectors, ward); c != nil {
			h.AssignedCollector = c.ID.Hex()
		}
		if _, err := t.households.Create(ctx, h); err != nil {
			return rep, fmt.Errorf("create household %q: %w", sh.Name, err)
		}
		rep.Households++
	}

	t.Log.Info("seed complete",
		zap.Int("accounts", rep.Accounts),
		zap.Int("collectors", rep.Collectors),
		zap.Int("households", rep.Households),
		zap.Int("skipped", rep.Skipped))
	t.printf("Seeded %d households. Every account uses password %q.\n", rep.Households, SeedPassword)
	return rep, nil
}

// seedPaymentStatus spreads payment states across the sample households.
func seedPaymentStatus(i int) string {
	switch {
	case i%5 == 0:
		return models.PaymentPending
	case i%7 == 0:
		return models.PaymentOverdue
	default:
		return models.PaymentPaid
	}
}

func (t *Tool) seedAccount(ctx context.Context, rep *SeedReport, u models.User) error {
	if _, err := t.users.Create(ctx, u); err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			t.Log.Info("account already exists", zap.String("email", u.Email))
			rep.Skipped++
			return nil
		}
		return fmt.Errorf("create account %s: %w", u.Email, err)
	}
	rep.Accounts++
	return nil
}

// seedCollector creates the collector and its login with the same id.
func (t *Tool) seedCollector(ctx context.Context, rep *SeedReport, sc seedCollector, hash string) error {
	c, err := t.collectors.Create(ctx, models.Collector{
		Name:  sc.Name,
		Phone: sc.Phone,
		Email: sc.Email,
		Wards: sc.Wards,
	})
	if err != nil {
		if errors.Is(err, collectorstore.ErrDuplicatePhone) {
			t.Log.Info("collector already exists", zap.String("phone", sc.Phone))
			rep.Skipped++
			return nil
		}
		return fmt.Errorf("create collector %s: %w", sc.Name, err)
	}
	rep.Collectors++

	if sc.Total > 0 {
		if err := t.collectors.SetTotalCollections(ctx, c.ID, sc.Total); err != nil {
			return fmt.Errorf("set total for %s: %w", sc.Name, err)
		}
	}
	return t.seedAccount(ctx, rep, models.User{
		ID: c.ID, FullName: sc.Name, Email: sc.Email, Role: models.RoleCollector, PasswordHash: hash,
	})
}

// ResetAndSeed empties the four collections and the collector logins,
// then seeds twelve collectors with overlapping wards and sixty
// unassigned households.
func (t *Tool) ResetAndSeed(ctx context.Context) (SeedReport, error) {
	var rep SeedReport

	for _, c := range []struct {
		name  string
		clear func(context.Context) (int64, error)
	}{
		{"households", t.households.DeleteAll},
		{"collectors", t.collectors.DeleteAll},
		{"collection logs", t.logs.DeleteAll},
		{"routes", t.routes.DeleteAll},
	} {
		n, err := c.clear(ctx)
		if err != nil {
			return rep, fmt.Errorf("clear %s: %w", c.name, err)
		}
		t.Log.Info("cleared", zap.String("collection", c.name), zap.Int64("deleted", n))
	}
	n, err := t.users.DeleteByRole(ctx, models.RoleCollector)
	if err != nil {
		return rep, fmt.Errorf("clear collector accounts: %w", err)
	}
	t.Log.Info("cleared", zap.String("collection", "collector accounts"), zap.Int64("deleted", n))

	hash, err := authutil.HashPasswordFast(SeedPassword)
	if err != nil {
		return rep, err
	}
	for _, sc := range resetCollectors {
		if err := t.seedCollector(ctx, &rep, sc, hash); err != nil {
			return rep, err
		}
	}

	bar := t.newBar(resetHouseholdCount, "Seeding households")
	for i := 0; i < resetHouseholdCount; i++ {
		if _, err := t.households.Create(ctx, t.randomHousehold()); err != nil {
			t.Log.Warn("create household failed", zap.Int("index", i), zap.Error(err))
			rep.Skipped++
		} else {
			rep.Households++
		}
		_ = bar.Add(1)
	}

	t.printf("System ready: %d collectors, %d households. Assign routes for today to begin.\n",
		rep.Collectors, rep.Households)
	return rep, nil
}

func (t *Tool) randomHousehold() models.Household {
	ward := t.Rand.IntN(seedWards) + 1
	name := firstNames[t.Rand.IntN(len(firstNames))] + " " + lastNames[t.Rand.IntN(len(lastNames))]
	return models.Household{
		ResidentName:      name,
		Address:           fmt.Sprintf("%s, Ward %d", houseNames[t.Rand.IntN(len(houseNames))], ward),
		Ward:              ward,
		Phone:             fmt.Sprintf("984%07d", 1000000+t.Rand.IntN(8999999)),
		MonthlyFee:        seedFee,
		PaymentStatus:     models.PaymentPending,
		CollectionStatus:  models.CollectionPending,
		AssignedCollector: models.Unassigned,
		PaymentMode:       models.PaymentModeNone,
		Lat:               t.jitter(baseLat, 0.1),
		Lng:               t.jitter(baseLng, 0.1),
	}
}

func (t *Tool) jitter(base, spread float64) *float64 {
	v := base + t.Rand.Float64()*spread
	return &v
}

// weight returns a kilogram value rounded to two decimals.
func (t *Tool) weight(min, spread float64) *float64 {
	v, _ := decimal.NewFromFloat(min + t.Rand.Float64()*spread).Round(2).Float64()
	return &v
}

// firstCovering returns the first collector whose wards include ward.
func firstCovering(collectors []models.Collector, ward int) *models.Collector {
	for i := range collectors {
		if collectors[i].Covers(ward) {
			return &collectors[i]
		}
	}
	return nil
}
