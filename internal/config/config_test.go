package config

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestConfig(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Config Suite")
}

var _ = Describe("Config", func() {
	var (
		tempDir    string
		configFile string
	)

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "config-test")
		Expect(err).NotTo(HaveOccurred())
		configFile = filepath.Join(tempDir, "config.yaml")
	})

	AfterEach(func() {
		os.RemoveAll(tempDir)
	})

	Describe("Load", func() {
		Context("when the file does not exist", func() {
			It("returns defaults without error", func() {
				cfg, err := Load(filepath.Join(tempDir, "missing.yaml"))
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Scheduler.ParallelismCap).To(Equal(3))
				Expect(cfg.Guardrails.DefaultVerificationLevel).To(Equal("standard"))
			})
		})

		Context("when the file has valid content", func() {
			BeforeEach(func() {
				valid := `
scheduler:
  parallelism_cap: 5
  max_retries: 2

guardrails:
  default_verification_level: critical

backend:
  provider: anthropic
  model: claude-sonnet-4-5
`
				Expect(os.WriteFile(configFile, []byte(valid), 0o600)).To(Succeed())
			})

			It("overlays the file on top of defaults", func() {
				cfg, err := Load(configFile)
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Scheduler.ParallelismCap).To(Equal(5))
				Expect(cfg.Scheduler.MaxRetries).To(Equal(2))
				Expect(cfg.Guardrails.DefaultVerificationLevel).To(Equal("critical"))
				Expect(cfg.Backend.Provider).To(Equal("anthropic"))
			})
		})

		Context("when the file is malformed YAML", func() {
			BeforeEach(func() {
				Expect(os.WriteFile(configFile, []byte("scheduler: [this is not a mapping"), 0o600)).To(Succeed())
			})

			It("returns an error", func() {
				_, err := Load(configFile)
				Expect(err).To(HaveOccurred())
			})
		})

		Context("when environment overrides are set", func() {
			BeforeEach(func() {
				os.Setenv("WRITECREW_PARALLELISM_CAP", "7")
			})
			AfterEach(func() {
				os.Unsetenv("WRITECREW_PARALLELISM_CAP")
			})

			It("applies the environment override after the file", func() {
				cfg, err := Load(filepath.Join(tempDir, "missing.yaml"))
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Scheduler.ParallelismCap).To(Equal(7))
			})
		})
	})

	Describe("Validate", func() {
		It("rejects a parallelism cap below 1", func() {
			cfg := Default()
			cfg.Scheduler.ParallelismCap = 0
			Expect(cfg.Validate()).To(HaveOccurred())
		})

		It("rejects an unrecognized verification level", func() {
			cfg := Default()
			cfg.Guardrails.DefaultVerificationLevel = "nonsense"
			Expect(cfg.Validate()).To(HaveOccurred())
		})

		It("accepts the zero-config defaults", func() {
			cfg := Default()
			Expect(cfg.Validate()).NotTo(HaveOccurred())
		})
	})
})
