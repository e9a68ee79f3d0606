package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"client-portal-provisioning/internal/config"
	"client-portal-provisioning/internal/domain/model"
	pg "client-portal-provisioning/internal/infra/db/postgres"
)

// Seeds the module catalog, historical aliases, and the purchasable plans.
// Running twice is harmless: every write is an upsert.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	moduleRepo := pg.NewModuleRepo(pool)
	aliasRepo := pg.NewModuleAliasRepo(pool)
	planRepo := pg.NewPlanRepo(pool)

	modules := []model.Module{
		{Code: "invoicing", DisplayName: "Invoicing"},
		{Code: "crm", DisplayName: "CRM"},
		{Code: "stock", DisplayName: "Stock Management"},
		{Code: "reports", DisplayName: "Reports"},
	}
	for i := range modules {
		if err := moduleRepo.Save(ctx, nil, &modules[i]); err != nil {
			log.Fatalf("save module %q: %v", modules[i].Code, err)
		}
		fmt.Printf("seeded module: %s\n", modules[i].Code)
	}

	// Historical spellings observed in older plan rows.
	aliases := []model.ModuleAlias{
		{Alias: "billing", Canonical: "invoicing", EffectiveAt: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Alias: "facturation", Canonical: "invoicing", EffectiveAt: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)},
		{Alias: "customers", Canonical: "crm", EffectiveAt: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Alias: "inventory", Canonical: "stock", EffectiveAt: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	for i := range aliases {
		if err := aliasRepo.Save(ctx, nil, &aliases[i]); err != nil {
			log.Fatalf("save alias %q: %v", aliases[i].Alias, err)
		}
		fmt.Printf("seeded alias: %s -> %s\n", aliases[i].Alias, aliases[i].Canonical)
	}

	seed := []struct {
		ID      string
		Name    string
		Price   int64
		Modules []string
	}{
		{"plan-starter", "Starter", 19_00, []string{"invoicing"}},
		{"plan-pro", "Pro", 49_00, []string{"invoicing", "crm"}},
		{"plan-enterprise", "Enterprise", 99_00, []string{"invoicing", "crm", "stock", "reports"}},
	}
	for _, s := range seed {
		p, err := model.NewPlan(s.ID, s.Name, s.Price, "EUR", s.Modules)
		if err != nil {
			log.Fatalf("plan %q: %v", s.Name, err)
		}
		if err := planRepo.Save(ctx, nil, p); err != nil {
			log.Fatalf("save plan %q: %v", s.Name, err)
		}
		fmt.Printf("seeded plan: %s (id=%s, price=%d, modules=%v)\n", p.Name, p.ID, p.Price, p.ModuleCodes)
	}

	fmt.Println("Seeding complete.")
}
