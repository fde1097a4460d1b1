package content

// Homepage is the marketing content rendered on the landing page.
type Homepage struct {
	Hero           Hero           `json:"hero"`
	PromoBanner    PromoBanner    `json:"promoBanner"`
	ExclusiveDeals ExclusiveDeals `json:"exclusiveDeals"`
	EETVSection    EETVSection    `json:"eeTvSection"`
	BTEESection    BTEESection    `json:"btEeSection"`
}

type Hero struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

type PromoBanner struct {
	Text    string `json:"text"`
	LinkURL string `json:"linkUrl"`
}

type ExclusiveDeals struct {
	Badge    string `json:"badge"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	CTAText1 string `json:"ctaText1"`
	CTAText2 string `json:"ctaText2"`
	ImageURL string `json:"imageUrl"`
}

type EETVSection struct {
	Badge       string   `json:"badge"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
	CTAText1    string   `json:"ctaText1"`
	CTAText2    string   `json:"ctaText2"`
	ImageURL    string   `json:"imageUrl"`
}

type BTEESection struct {
	Title    string        `json:"title"`
	Subtitle string        `json:"subtitle"`
	Products []ProductCard `json:"products"`
}

type ProductCard struct {
	Category      string `json:"category"`
	CategoryColor string `json:"categoryColor"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	CTAText       string `json:"ctaText"`
	ImageURL      string `json:"imageUrl"`
}

const defaultCategoryColor = "text-[#5514B4]"

// DefaultHomepage returns the content shown when the CMS has nothing to say.
func DefaultHomepage() Homepage {
	return Homepage{
		Hero: Hero{
			Title:    "Upgrade your home with BT Broadband",
			Subtitle: "Fast, reliable BT Broadband and EE TV packages for busy households.",
		},
		PromoBanner: PromoBanner{
			Text:    "Don't have BT Broadband yet? Find your available deals",
			LinkURL: "#",
		},
		ExclusiveDeals: ExclusiveDeals{
			Badge:    "Trusted, reliable broadband",
			Title:    "Exclusive deals just for you",
			Subtitle: "Already a BT customer? Unlock personalised offers on broadband and TV.",
			CTAText1: "Log in for exclusive deals",
			CTAText2: "Manage My BT account",
			ImageURL: "https://www.bt.com/content/dam/bt/storefront/bt-home/newcust/images/mainherobanner/2025/march/Homepage_NewCust_MainHero_v2_Desktop_1920x1200.webp",
		},
		EETVSection: EETVSection{
			Badge:       "EE TV",
			Title:       "Experience entertainment like never before",
			Description: "Stream your favourite shows, movies, and sports all in one place. With EE TV, you get access to premium content from Netflix, Disney+, Apple TV+, and more.",
			Features: []string{
				"Over 100+ channels included",
				"Premium streaming apps built-in",
				"Pause and rewind live TV",
				"Voice control with your remote",
			},
			CTAText1: "Get EE TV",
			CTAText2: "Learn more",
			ImageURL: "https://www.bt.com/content/dam/bt/consumer/homepage-images/Cards/products/ee-tv-box.png",
		},
		BTEESection: BTEESection{
			Title:    "BT + EE, the ultimate home entertainment",
			Subtitle: "Power your home with BT's Full Fibre Broadband (up to 900Mbps) and tailor your EE TV with Sky Sports, Netflix, or Now Cinema. Grab the best of both worlds.",
			Products: []ProductCard{
				{
					Category:      "BT Broadband",
					CategoryColor: defaultCategoryColor,
					Title:         "Reliable. Fast.",
					Description:   "BT's trusted network with brilliant services",
					CTAText:       "View your personalised deals",
					ImageURL:      "https://www.bt.com/content/dam/bt/consumer/homepage-images/Cards/products/bb-hub.png",
				},
				{
					Category:      "iPhone offer",
					CategoryColor: "text-[#FF80FF]",
					Title:         "Latest. iPhone 17 Pro",
					Description:   "New exclusive offer - BT Broadband customers now get 30% off data plans, plus double data.",
					CTAText:       "Buy now",
					ImageURL:      "https://www.bt.com/content/dam/bt/consumer/homepage-images/Cards/products/iphone-16-pro.png",
				},
				{
					Category:      "EE TV",
					CategoryColor: defaultCategoryColor,
					Title:         "Watch. Swap. Enjoy",
					Description:   "Premium channels with the flexibility to swap each month",
					CTAText:       "Add EE TV to your broadband",
					ImageURL:      "https://www.bt.com/content/dam/bt/consumer/homepage-images/Cards/products/ee-tv-box.png",
				},
				{
					Category:      "EE Sports",
					CategoryColor: defaultCategoryColor,
					Title:         "Live. Sports. Action",
					Description:   "TNT Sports, Sky Sports included",
					CTAText:       "Buy TNT Sports",
					ImageURL:      "https://www.bt.com/content/dam/bt/consumer/homepage-images/Cards/products/tnt-sports.png",
				},
				{
					Category:      "BT Business",
					CategoryColor: defaultCategoryColor,
					Title:         "Secure. Connected.",
					Description:   "Business broadband solutions for your company",
					CTAText:       "Get unbeatable deals",
					ImageURL:      "https://www.bt.com/content/dam/bt/consumer/homepage-images/Cards/products/bb-hub.png",
				},
			},
		},
	}
}

// Merge returns base with every non-empty field of override applied. Neither
// argument is modified.
func Merge(base, override Homepage) Homepage {
	out := base
	out.Hero = Hero{
		Title:    pick(base.Hero.Title, override.Hero.Title),
		Subtitle: pick(base.Hero.Subtitle, override.Hero.Subtitle),
	}
	out.PromoBanner = PromoBanner{
		Text:    pick(base.PromoBanner.Text, override.PromoBanner.Text),
		LinkURL: pick(base.PromoBanner.LinkURL, override.PromoBanner.LinkURL),
	}
	d, od := base.ExclusiveDeals, override.ExclusiveDeals
	out.ExclusiveDeals = ExclusiveDeals{
		Badge:    pick(d.Badge, od.Badge),
		Title:    pick(d.Title, od.Title),
		Subtitle: pick(d.Subtitle, od.Subtitle),
		CTAText1: pick(d.CTAText1, od.CTAText1),
		CTAText2: pick(d.CTAText2, od.CTAText2),
		ImageURL: pick(d.ImageURL, od.ImageURL),
	}
	tv, otv := base.EETVSection, override.EETVSection
	out.EETVSection = EETVSection{
		Badge:       pick(tv.Badge, otv.Badge),
		Title:       pick(tv.Title, otv.Title),
		Description: pick(tv.Description, otv.Description),
		Features:    pickSlice(tv.Features, otv.Features),
		CTAText1:    pick(tv.CTAText1, otv.CTAText1),
		CTAText2:    pick(tv.CTAText2, otv.CTAText2),
		ImageURL:    pick(tv.ImageURL, otv.ImageURL),
	}
	out.BTEESection = BTEESection{
		Title:    pick(base.BTEESection.Title, override.BTEESection.Title),
		Subtitle: pick(base.BTEESection.Subtitle, override.BTEESection.Subtitle),
		Products: pickSlice(base.BTEESection.Products, override.BTEESection.Products),
	}
	return out
}

func pick(base, override string) string {
	if override != "" {
		return override
	}
	return base
}

func pickSlice[T any](base, override []T) []T {
	src := base
	if len(override) > 0 {
		src = override
	}
	if src == nil {
		return nil
	}
	return append([]T(nil), src...)
}
