package main

import (
	"os"
	"path"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

const (
	defaultClaudeModel = "claude-sonnet-4-5-20250929"
	defaultGeminiModel = "gemini-2.5-flash"
)

type dataFiles struct {
	Transactions           string `yaml:"transactions"`
	CreditCardTransactions string `yaml:"credit_card_transactions"`
	SocialMedia            string `yaml:"social_media"`
	KYC                    string `yaml:"kyc"`
	Emails                 string `yaml:"emails"`
	ReceiverCategories     string `yaml:"receiver_categories"`
	CreditCards            string `yaml:"credit_cards"`
	Loans                  string `yaml:"loans"`
	CreditCardList         string `yaml:"credit_card_list"`
}

type aiConfig struct {
	Provider  string `yaml:"provider"` // claude or gemini
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	MaxTokens int64  `yaml:"max_tokens"`
}

type voiceConfig struct {
	APIKey string `yaml:"api_key"`
	Voice  string `yaml:"voice"`
}

// config is built once by main and handed to every component that needs it.
type config struct {
	DataDir   string      `yaml:"data_dir"`
	OutputDir string      `yaml:"output_dir"`
	Files     dataFiles   `yaml:"files"`
	AI        aiConfig    `yaml:"ai"`
	Voice     voiceConfig `yaml:"voice"`

	Classifier struct {
		Learn     bool    `yaml:"learn"`
		Threshold float64 `yaml:"threshold"`
	} `yaml:"classifier"`

	Interests struct {
		SpendThreshold float64 `yaml:"spend_threshold"`
	} `yaml:"interests"`

	TopMerchants int  `yaml:"top_merchants"`
	Cache        bool `yaml:"cache"`

	confDir string
}

func defaultConfig(confDir string) *config {
	c := &config{
		DataDir:   "data",
		OutputDir: "output",
		Files: dataFiles{
			Transactions:           "Account_Statement.csv",
			CreditCardTransactions: "credit_card_transactions.csv",
			SocialMedia:            "social_media_posts.csv",
			KYC:                    "KYC_Details.csv",
			Emails:                 "emails_to_wells_fargo.csv",
			ReceiverCategories:     "Receiver_vs_Category.csv",
			CreditCards:            "Wells_Fargo_Credit_Card_Details.csv",
			Loans:                  "Wells_Fargo_Loan_Details.csv",
			CreditCardList:         "credit_card_list.csv",
		},
		AI:           aiConfig{Provider: "claude", MaxTokens: 8192},
		Voice:        voiceConfig{Voice: "alloy"},
		TopMerchants: 5,
		Cache:        true,
		confDir:      confDir,
	}
	c.Classifier.Threshold = 0.9
	c.Interests.SpendThreshold = 100
	return c
}

// loadConfig reads config.yaml from confDir on top of the defaults. A missing
// file is not an error.
func loadConfig(confDir string) (*config, error) {
	c := defaultConfig(confDir)
	fpath := path.Join(confDir, "config.yaml")
	data, err := os.ReadFile(fpath)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "while reading %s", fpath)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrapf(err, "unable to unmarshal yaml config at %s", fpath)
	}
	c.confDir = confDir
	if c.TopMerchants <= 0 {
		c.TopMerchants = 5
	}
	return c, nil
}

// apiKey returns the key configured for the selected provider, falling back to
// the provider's environment variable.
func (c *config) apiKey() string {
	if len(c.AI.APIKey) > 0 {
		return c.AI.APIKey
	}
	switch c.AI.Provider {
	case "gemini":
		return os.Getenv("GEMINI_API_KEY")
	default:
		return os.Getenv("ANTHROPIC_API_KEY")
	}
}

func (c *config) model() string {
	if len(c.AI.Model) > 0 {
		return c.AI.Model
	}
	if c.AI.Provider == "gemini" {
		return defaultGeminiModel
	}
	return defaultClaudeModel
}

func (c *config) voiceKey() string {
	if len(c.Voice.APIKey) > 0 {
		return c.Voice.APIKey
	}
	return os.Getenv("OPENAI_API_KEY")
}

func (c *config) dataPath(name string) string   { return path.Join(c.DataDir, name) }
func (c *config) outputPath(name string) string { return path.Join(c.OutputDir, name) }
func (c *config) audioDir() string              { return path.Join(c.OutputDir, "audio") }

// ensureDirectories creates every directory the run writes into.
func ensureDirectories(c *config) error {
	for _, dir := range []string{c.confDir, c.DataDir, c.OutputDir, c.audioDir()} {
		if len(dir) == 0 {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "unable to create directory: %s", dir)
		}
	}
	return nil
}
