package main

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

const (
	spendingFile  = "spending_analysis.json"
	kycFile       = "kyc_details.json"
	interestsFile = "user_interests.json"
	productsFile  = "product_recommendations.json"
	cardsFile     = "credit_card_recommendations.json"
	creditFile    = "credit_profile.json"
	grievanceFile = "grievance_analysis.json"
	availableFile = "available_products.json"
)

// snapshot is the set of artifacts a run writes. The update flow reads it
// back, changes it and writes it out again in full.
type snapshot struct {
	Summary   SpendingSummary
	KYC       KYCDetails
	Interests []string
	Products  ProductRecommendations
	Cards     CardRecommendations
	Credit    CreditProfile
	Available Products
}

func (s *snapshot) save(cfg *config) error {
	files := []struct {
		name string
		v    any
	}{
		{spendingFile, s.Summary},
		{kycFile, s.KYC},
		{interestsFile, s.Interests},
		{productsFile, s.Products},
		{cardsFile, s.Cards},
		{creditFile, s.Credit},
		{availableFile, s.Available},
	}
	for _, f := range files {
		if err := writeJSON(cfg.outputPath(f.name), f.v); err != nil {
			return err
		}
	}
	return nil
}

// loadSnapshot reads the artifacts of an earlier run. The five core files
// must exist. Credit profile and catalog are optional.
func loadSnapshot(cfg *config) (*snapshot, error) {
	s := &snapshot{Summary: emptySummary()}
	required := []struct {
		name string
		v    any
	}{
		{spendingFile, &s.Summary},
		{kycFile, &s.KYC},
		{interestsFile, &s.Interests},
		{productsFile, &s.Products},
		{cardsFile, &s.Cards},
	}
	for _, f := range required {
		if err := readJSON(cfg.outputPath(f.name), f.v); err != nil {
			return nil, errors.Wrap(err, "previous analysis not found, run a full analysis first")
		}
	}
	_ = readJSON(cfg.outputPath(creditFile), &s.Credit)
	_ = readJSON(cfg.outputPath(availableFile), &s.Available)
	s.Products.fill()
	s.Cards.fill()
	return s, nil
}

func (s *snapshot) adviceInput() adviceInput {
	return adviceInput{
		Summary:   s.Summary,
		KYC:       s.KYC,
		Interests: s.Interests,
		Credit:    s.Credit,
		Products:  s.Available,
		Cards:     s.Cards,
	}
}

// app wires the pipeline for one run.
type app struct {
	cfg  *config
	st   status
	load *loader
	cat  *categorizer
	agg  *aggregator
	adv  *advisor
}

func newApp(cfg *config, st status, cat *categorizer, adv *advisor) *app {
	return &app{
		cfg:  cfg,
		st:   st,
		load: newLoader(cfg, st.log),
		cat:  cat,
		agg:  newAggregator(cat, cfg.TopMerchants),
		adv:  adv,
	}
}

// analyze runs everything up to, but not including, the model calls.
func (a *app) analyze() *snapshot {
	cm := a.load.categoryMap()
	bank := a.load.bankTransactions(cm)
	card := a.load.cardTransactions(cm)

	if a.cfg.Classifier.Learn {
		all := append(append([]Txn{}, bank...), card...)
		if n := a.cat.learn(all, a.cfg.Classifier.Threshold); n > 0 {
			a.st.progress("Classifier trained on %d transactions", n)
		} else {
			a.st.warn("Not enough labelled transactions to train the classifier")
		}
	}

	s := &snapshot{}
	a.st.progress("Calculating spending summary")
	s.Summary = a.agg.aggregate(bank, card)
	a.st.success("Spending summary: total %.2f across %d categories",
		s.Summary.TotalSpend, len(s.Summary.SpendingByCategory))

	if kyc, ok := a.load.kyc(); ok {
		s.KYC = kycDetails(kyc, s.Summary)
	} else {
		a.st.warn("No KYC details available")
	}

	s.Interests = inferInterests(s.Summary, a.load.posts(), a.cfg.Interests.SpendThreshold)
	a.st.success("Inferred %d interests", len(s.Interests))

	s.Credit = creditProfile(a.load.ownedCards(), card)
	s.Available = availableProducts(a.load.cardCatalog(), a.load.loanCatalog())
	return s
}

func (a *app) recommend(ctx context.Context, s *snapshot) {
	s.Products = a.adv.productRecommendations(ctx, s.adviceInput())
	s.Cards = a.adv.cardRecommendations(ctx, s.adviceInput())
}

func (a *app) runFull(ctx context.Context) error {
	s := a.analyze()
	a.recommend(ctx, s)
	if err := s.save(a.cfg); err != nil {
		return err
	}
	a.st.success("Analysis written to %s", a.cfg.OutputDir)
	return nil
}

// updateSocial folds new posts into the stored interests, rewrites the
// profile and regenerates both recommendation sets.
func (a *app) updateSocial(ctx context.Context, postsPath string) error {
	s, err := loadSnapshot(a.cfg)
	if err != nil {
		return err
	}
	posts := a.load.postsAt(postsPath)
	if len(posts) == 0 {
		return errors.Errorf("no posts found in %s", postsPath)
	}

	fresh := postInterests(posts)
	before := len(s.Interests)
	s.Interests = mergeInterests(s.Interests, fresh)
	a.st.success("Interests updated: %d new, %d total", len(s.Interests)-before, len(s.Interests))

	joined := strings.Join(s.Interests, ", ")
	s.KYC.Interests = joined
	s.KYC.Hobbies = joined

	if len(s.Available.CreditCards) == 0 && len(s.Available.Loans) == 0 {
		s.Available = availableProducts(a.load.cardCatalog(), a.load.loanCatalog())
	}
	a.recommend(ctx, s)
	return s.save(a.cfg)
}

func (a *app) askInput(query string) (askInput, error) {
	s, err := loadSnapshot(a.cfg)
	if err != nil {
		return askInput{}, err
	}
	return askInput{
		Query:         query,
		TopCategories: s.Summary.topCategories(3),
		KYC:           s.KYC,
		Cards:         s.Cards,
	}, nil
}

func (a *app) ask(ctx context.Context, query string) (string, error) {
	in, err := a.askInput(query)
	if err != nil {
		return "", err
	}
	return a.adv.answer(ctx, in)
}

func (a *app) grievances(ctx context.Context) error {
	g := a.adv.grievances(ctx, a.load.emails())
	return writeJSON(a.cfg.outputPath(grievanceFile), g)
}
