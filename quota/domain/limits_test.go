package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetUserLimits(t *testing.T) {
	cases := []struct {
		name string
		sub  *Subscription
		want Tier
	}{
		{"no subscription", nil, TierFree},
		{"pro plan", &Subscription{PlanName: "pro"}, TierPro},
		{"upper case is not pro", &Subscription{PlanName: "PRO"}, TierFree},
		{"unknown plan", &Subscription{PlanName: "enterprise"}, TierFree},
		{"empty plan", &Subscription{}, TierFree},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, GetUserLimits(tc.sub).Tier)
		})
	}
}

func TestTierLimits_Values(t *testing.T) {
	free := LimitsFor(TierFree)
	assert.Equal(t, int64(5*1024*1024), free.MaxFileSize)
	assert.Equal(t, int64(500*1024*1024), free.TotalStorage)
	assert.Equal(t, int64(3), free.MaxProjects)
	assert.Equal(t, int64(1000), free.APICallsPerMonth)
	assert.Equal(t, []string{"jpg", "jpeg", "png", "pdf", "doc", "docx", "txt"}, free.FileTypes)

	pro := LimitsFor(TierPro)
	assert.Equal(t, int64(100*1024*1024), pro.MaxFileSize)
	assert.Equal(t, int64(10*1024*1024*1024), pro.TotalStorage)
	assert.True(t, IsUnlimited(pro.MaxProjects))
	assert.True(t, IsUnlimited(pro.APICallsPerMonth))
	for _, ext := range []string{"psd", "ai", "xd", "sketch", "zip", "rar"} {
		assert.True(t, pro.AllowsFileType(ext), ext)
		assert.False(t, free.AllowsFileType(ext), ext)
	}
}

func atLeast(a, b int64) bool {
	if IsUnlimited(a) {
		return true
	}
	if IsUnlimited(b) {
		return false
	}
	return a >= b
}

func TestTierLimits_ProDominatesFree(t *testing.T) {
	free, pro := LimitsFor(TierFree), LimitsFor(TierPro)

	assert.True(t, atLeast(pro.MaxFileSize, free.MaxFileSize))
	assert.True(t, atLeast(pro.TotalStorage, free.TotalStorage))
	assert.True(t, atLeast(pro.MaxProjects, free.MaxProjects))
	assert.True(t, atLeast(pro.APICallsPerMonth, free.APICallsPerMonth))
	assert.Subset(t, pro.FileTypes, free.FileTypes)
}

func TestLimitsFor_ReturnsCopy(t *testing.T) {
	l := GetUserLimits(nil)
	l.FileTypes[0] = "exe"

	assert.False(t, GetUserLimits(nil).AllowsFileType("exe"))
	assert.True(t, GetUserLimits(nil).AllowsFileType("jpg"))
}

func TestExtensionFromMIME(t *testing.T) {
	assert.Equal(t, "png", ExtensionFromMIME("image/png"))
	assert.Equal(t, "jpeg", ExtensionFromMIME("IMAGE/JPEG"))
	assert.Equal(t, "vnd.openxmlformats-officedocument.wordprocessingml.document",
		ExtensionFromMIME("application/vnd.openxmlformats-officedocument.wordprocessingml.document"))
	assert.Equal(t, "txt", ExtensionFromMIME("txt"))
	assert.Equal(t, "", ExtensionFromMIME(""))
}

func TestPlans(t *testing.T) {
	plans := Plans()
	if assert.Len(t, plans, 2) {
		assert.Equal(t, 0, plans[0].Price)
		assert.Equal(t, 99, plans[1].Price)
		assert.Equal(t, TierPro, plans[1].Tier)
	}
}

func TestFormatBytes(t *testing.T) {
	cases := map[int64]string{
		0:                    "0 Bytes",
		1:                    "1 Bytes",
		1023:                 "1023 Bytes",
		1024:                 "1 KB",
		1536:                 "1.5 KB",
		5 * MB:               "5 MB",
		500 * MB:             "500 MB",
		10 * GB:              "10 GB",
		1234567:              "1.18 MB",
		2 * 1024 * GB:        "2 TB",
		3 * 1024 * 1024 * GB: "3072 TB",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatBytes(in), fmt.Sprint(in))
	}
	assert.Equal(t, "Unlimited", FormatLimit(Unlimited))
}

func TestQuotaErrors(t *testing.T) {
	elig := &EligibilityError{Reason: "File type exe is not supported in your plan"}
	assert.Equal(t, "File type exe is not supported in your plan", elig.Error())
	assert.Equal(t, 403, elig.StatusCode())

	assert.True(t, IsQuotaError(fmt.Errorf("upload: %w", elig)))
	assert.True(t, IsQuotaError(errors.New("You have reached your storage limit of 500 MB")))
	assert.True(t, IsQuotaError(errors.New("File exceeds the maximum size limit of 5 MB")))
	assert.False(t, IsQuotaError(errors.New("connection reset")))
	assert.False(t, IsQuotaError(nil))

	cause := errors.New("timeout")
	var sync *MetadataSyncError
	assert.True(t, errors.As(fmt.Errorf("wrap: %w", &MetadataSyncError{UserID: "u1", Err: cause}), &sync))
	assert.ErrorIs(t, sync, cause)
	assert.ErrorIs(t, &StoreWriteError{Path: "u1/x", Err: cause}, cause)
	assert.ErrorIs(t, &StoreUnavailableError{Op: "list", Err: cause}, cause)
	assert.False(t, IsQuotaError(&StoreWriteError{Path: "u1/x", Err: cause}))
}
