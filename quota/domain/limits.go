package domain

import (
	"slices"
	"strings"
)

// Tier es el nivel de servicio derivado de la suscripción
type Tier string

const (
	TierFree Tier = "FREE"
	TierPro  Tier = "PRO"
)

// Unlimited marca un límite de conteo sin tope
const Unlimited int64 = -1

const (
	KB int64 = 1024
	MB       = 1024 * KB
	GB       = 1024 * MB
)

// TierLimits es el conjunto de límites de un tier
type TierLimits struct {
	Tier             Tier     `json:"tier"`
	MaxFileSize      int64    `json:"maxFileSize"`
	TotalStorage     int64    `json:"totalStorage"`
	MaxProjects      int64    `json:"maxProjects"`
	APICallsPerMonth int64    `json:"apiCallsPerMonth"`
	FileTypes        []string `json:"fileTypes"`
}

var freeFileTypes = []string{"jpg", "jpeg", "png", "pdf", "doc", "docx", "txt"}

var tierLimits = map[Tier]TierLimits{
	TierFree: {
		Tier:             TierFree,
		MaxFileSize:      5 * MB,
		TotalStorage:     500 * MB,
		MaxProjects:      3,
		APICallsPerMonth: 1000,
		FileTypes:        freeFileTypes,
	},
	TierPro: {
		Tier:             TierPro,
		MaxFileSize:      100 * MB,
		TotalStorage:     10 * GB,
		MaxProjects:      Unlimited,
		APICallsPerMonth: Unlimited,
		FileTypes:        append(slices.Clone(freeFileTypes), "psd", "ai", "xd", "sketch", "zip", "rar"),
	},
}

// IsUnlimited reports whether a count limit has no ceiling.
func IsUnlimited(limit int64) bool {
	return limit == Unlimited
}

// TierFor maps a subscription to its tier. Anything but plan "pro" is FREE,
// including a missing subscription.
func TierFor(sub *Subscription) Tier {
	if sub != nil && sub.PlanName == PlanPro {
		return TierPro
	}
	return TierFree
}

// LimitsFor returns a copy of the tier's limits; FileTypes is never shared
// with the table.
func LimitsFor(tier Tier) TierLimits {
	l, ok := tierLimits[tier]
	if !ok {
		l = tierLimits[TierFree]
	}
	l.FileTypes = slices.Clone(l.FileTypes)
	return l
}

// GetUserLimits resolves the limits that apply to the subscription holder.
func GetUserLimits(sub *Subscription) TierLimits {
	return LimitsFor(TierFor(sub))
}

// AllowsFileType checks an already lower-cased extension.
func (l TierLimits) AllowsFileType(ext string) bool {
	return slices.Contains(l.FileTypes, ext)
}

// ExtensionFromMIME returns the lower-cased text after the last "/". A value
// without a slash is returned whole.
func ExtensionFromMIME(mimeType string) string {
	if i := strings.LastIndex(mimeType, "/"); i >= 0 {
		mimeType = mimeType[i+1:]
	}
	return strings.ToLower(mimeType)
}

// Plan is a display entry of the plan catalogue. No billing happens here.
type Plan struct {
	Name     string   `json:"name"`
	Tier     Tier     `json:"tier"`
	Price    int      `json:"price"`
	Features []string `json:"features"`
}

// Plans returns the catalogue shown to users.
func Plans() []Plan {
	return []Plan{
		{
			Name:  "Free",
			Tier:  TierFree,
			Price: 0,
			Features: []string{
				"Basic features",
				"Up to 3 projects",
				"Basic analytics",
				"Community support",
				"1,000 API calls per month",
			},
		},
		{
			Name:  "Pro",
			Tier:  TierPro,
			Price: 99,
			Features: []string{
				"All Free features",
				"Unlimited projects",
				"Advanced analytics",
				"Priority support",
				"Custom domains",
				"No Unextep branding",
				"Unlimited API calls",
			},
		},
	}
}
