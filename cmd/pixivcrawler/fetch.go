package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"pixivcrawler/internal/downloader"
	"pixivcrawler/pkg/auth"
	"pixivcrawler/pkg/config"
	"pixivcrawler/pkg/logger"
	"pixivcrawler/pkg/pixiv"
	"pixivcrawler/pkg/scraper"
	"pixivcrawler/pkg/ui"
)

var profileName string

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch [tag | tag-url]",
	Short: "Download popular artworks of a tag",
	Long: `Download the most popular artworks of a Pixiv tag.

Artworks already present under the save folder are skipped, so repeated runs
only fetch what is new. Images are sorted into horizontal, vertical and square
folders unless --sort=false is given.

The Pixiv cookie is taken from --cookie, PIXIVCRAWLER_COOKIE, the config
file, or a profile stored with 'pixivcrawler auth login'.`,
	Example: `  # Download up to 500 illustrations of a tag
  pixivcrawler fetch 風景

  # Use a tag page URL and a smaller limit
  pixivcrawler fetch https://www.pixiv.net/tags/%E9%A2%A8%E6%99%AF/artworks --limit 50

  # Keep manga and skip orientation folders
  pixivcrawler fetch 風景 --exclude-manga=false --sort=false`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().String("cookie", "", "Pixiv Cookie header")
	fetchCmd.Flags().IntP("limit", "n", 500, "number of artworks to collect from the listing")
	fetchCmd.Flags().StringP("output", "o", "", "save root for downloaded images")
	fetchCmd.Flags().Bool("exclude-manga", true, "skip manga and ugoira")
	fetchCmd.Flags().Bool("sort", true, "sort images into orientation folders")
	fetchCmd.Flags().StringVarP(&profileName, "profile", "p", "", "stored credential profile to use")
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}

	if len(args) > 0 {
		cfg.Search.Tag = args[0]
	}
	cfg.Search.Tag = pixiv.ResolveTag(cfg.Search.Tag)

	if err := applyStoredCredentials(cfg, log); err != nil {
		return &configError{err}
	}
	if err := cfg.ValidateFetch(); err != nil {
		return &configError{err}
	}
	if _, ok := auth.SessionID(cfg.Pixiv.Cookie); !ok {
		ui.PrintWarning("Cookie has no " + auth.SessionCookieName + ", results may be limited")
	}

	ui.PrintInfo("Tag", cfg.Search.Tag)
	ui.PrintInfo("Target", strconv.Itoa(cfg.Search.TargetCount))
	ui.PrintInfo("Save root", cfg.Output.SaveRoot)

	client := pixiv.NewClient(pixiv.OptionsFromConfig(cfg), log)
	s := scraper.New(client, downloader.New(client, log), scraper.OptionsFromConfig(cfg), log)
	s.SetProgress(ui.NewProgressDisplay())

	summary, err := s.Run(cmd.Context(), cfg.Search.Tag, cfg.Search.TargetCount)
	if summary != nil {
		printFetchSummary(summary)
	}
	if err != nil {
		if errors.Is(err, scraper.ErrEmptyTag) || errors.Is(err, scraper.ErrInvalidTarget) {
			return &configError{err}
		}
		return err
	}
	return nil
}

// applyStoredCredentials fills the cookie from the credential store when no
// other source provided one, or when a profile is named explicitly
func applyStoredCredentials(cfg *config.Config, log logger.Logger) error {
	if cfg.Pixiv.Cookie != "" && profileName == "" {
		return nil
	}

	manager, err := auth.NewManager()
	if err != nil {
		if profileName != "" {
			return fmt.Errorf("credential store unavailable: %w", err)
		}
		log.WithError(err).Debug("credential store unavailable")
		return nil
	}

	var profile *auth.Profile
	if profileName != "" {
		profile, err = manager.Retrieve(profileName)
		if err != nil {
			return fmt.Errorf("profile %q not found, see 'pixivcrawler auth list'", profileName)
		}
	} else {
		profile, err = manager.RetrieveDefault()
		if err != nil {
			return nil
		}
	}

	cfg.Pixiv.Cookie = profile.Cookie
	if profile.UserAgent != "" {
		cfg.Pixiv.UserAgent = profile.UserAgent
	}
	log.WithField("profile", profile.Name).Info("using stored credentials")
	ui.PrintInfo("Profile", profile.Name)
	return nil
}

func printFetchSummary(s *scraper.Summary) {
	ui.PrintRule()
	ui.PrintInfo("Folder", s.BasePath)
	ui.PrintInfo("Already on disk", strconv.Itoa(s.Existing))
	ui.PrintInfo("Listed", strconv.Itoa(s.Fetched))
	ui.PrintInfo("New", strconv.Itoa(s.New))
	ui.PrintInfo("Downloaded", fmt.Sprintf("%d (%s)", s.Downloaded, ui.FormatBytes(s.Bytes)))
	if s.Skipped > 0 {
		ui.PrintInfo("Skipped", strconv.Itoa(s.Skipped))
	}
	if s.Failed > 0 || s.ArtworksFailed > 0 {
		ui.PrintWarning(fmt.Sprintf("Failed: %d images, %d artworks", s.Failed, s.ArtworksFailed))
	}
	ui.PrintInfo("Duration", fmt.Sprintf("%s (%s paused)", ui.FormatDuration(s.Duration), ui.FormatDuration(s.Paused)))
	ui.PrintSuccess("Fetch finished")
}
