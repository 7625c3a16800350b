package enums

import "fmt"

// BannerType groups hero slides by purpose.
type BannerType string

const (
	BannerTypePromo   BannerType = "promo"
	BannerTypeNews    BannerType = "news"
	BannerTypeProduct BannerType = "product"
	BannerTypeGeneral BannerType = "general"
)

var validBannerTypes = []BannerType{
	BannerTypePromo,
	BannerTypeNews,
	BannerTypeProduct,
	BannerTypeGeneral,
}

func (b BannerType) String() string {
	return string(b)
}

func (b BannerType) IsValid() bool {
	for _, candidate := range validBannerTypes {
		if candidate == b {
			return true
		}
	}
	return false
}

func ParseBannerType(value string) (BannerType, error) {
	for _, candidate := range validBannerTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid banner type %q", value)
}
