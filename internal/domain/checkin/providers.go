// internal/domain/checkin/providers.go
package checkin

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const unknown = "未知"

var defaultAcceptable = []Classification{ClassSuccess, ClassAlreadyDone}

// Cloud Cat replies mix Chinese and English labels, so both are matched.
var (
	cloudcatGainedRe      = regexp.MustCompile(`(?i)(?:获得|you got)\s*(\d+\.?\d*)\s?⭐`)
	cloudcatTotalRe       = regexp.MustCompile(`(?i)(?:当前积分[:：]|current points:\s*)(\d+\.?\d*)\s?⭐`)
	cloudcatQueryGainedRe = regexp.MustCompile(`(?i)CheckInAddPoint[:：]\s*(\d+\.?\d*)\s*⭐?`)
	cloudcatQueryTotalRe  = regexp.MustCompile(`(?i)(?:当前积分[:：]|current points[:：]\s*)(\d+\.?\d*)`)

	sheeridGainedRe = regexp.MustCompile(`获得积分\D*(\d+)`)
	sheeridTotalRe  = regexp.MustCompile(`当前积分\D*(\d+)`)

	icmpGainedRe    = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(GB|MB|KB|B)`)
	icmpStreakRe    = regexp.MustCompile(`连续签到[：:\s]+(\d+)`)
	icmpQuotaRe     = regexp.MustCompile(`配额[：:\s]+([\d\.]+\s*[GMB]+)`)
	icmpUsedRe      = regexp.MustCompile(`已用[：:\s]+([\d\.]+\s*[GMB]+)`)
	icmpRemainingRe = regexp.MustCompile(`剩余[：:\s]+([\d\.]+\s*[GMB]+)`)
	icmpUserRe      = regexp.MustCompile(`📊\s*([^\n\r]+)`)
)

// icmpQuotaRules are shared between the check-in reply and the refreshed
// account message, which both carry the streak and quota block.
var icmpQuotaRules = []Rule{
	{Field: "streak", Pattern: icmpStreakRe, Format: suffixed(1, " 天")},
	{Field: "total", Pattern: icmpQuotaRe},
	{Field: "used", Pattern: icmpUsedRe},
	{Field: "remaining", Pattern: icmpRemainingRe},
}

func icmpGainedFormat(groups []string) (string, bool) {
	return groups[1] + " " + strings.ToUpper(groups[2]), true
}

// icmpUserFormat trims the decorated account line down to the bare name.
func icmpUserFormat(groups []string) (string, bool) {
	name := groups[1]
	if i := strings.Index(name, "━━"); i >= 0 {
		name = name[:i]
	}
	name = strings.ReplaceAll(name, "*", "")
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	return name, true
}

// icmpVMListing extracts the free-text virtual machine listing revealed by
// the second inline round.
func icmpVMListing(text string) (string, bool) {
	clean := strings.ReplaceAll(text, "*", "")
	if i := strings.LastIndex(clean, "虚拟机列表"); i >= 0 {
		clean = clean[i+len("虚拟机列表"):]
	}
	clean = strings.TrimSpace(clean)
	if clean == "" {
		clean = "您当前没有虚拟机"
	}
	return clean, true
}

// BuiltinProviders returns the provider table in registration order.
func BuiltinProviders() []Provider {
	return []Provider{
		{
			Name:            "cloudcat",
			Title:           "Cloud Cat 签到通知",
			HeaderGlyph:     "🎉",
			Chat:            "@cloudcatgroup",
			Bot:             "@CloudCatOfficialBot",
			Command:         "/checkin",
			FollowupCommand: "/points",
			Settle:          10 * time.Second,
			ScanWindow:      30,
			Correlation:     CorrelateThreshold,
			SuccessKeywords: []string{"成功", "successful"},
			AlreadyKeywords: []string{"已经签到过了", "今天已经签到", "今日已签到"},
			Fields: []Field{
				{Key: "gained", Default: unknown},
				{Key: "total", Default: unknown},
			},
			CheckinRules: []Rule{
				{Field: "gained", Pattern: cloudcatGainedRe, Format: suffixed(1, " ⭐")},
				{Field: "total", Pattern: cloudcatTotalRe, Format: intSuffixed(1, " ⭐")},
			},
			QueryRules: []Rule{
				{Field: "gained", Pattern: cloudcatQueryGainedRe, Format: suffixed(1, " ⭐")},
				{Field: "total", Pattern: cloudcatQueryTotalRe, Format: intSuffixed(1, " ⭐")},
			},
			NotifyLines: []NotifyLine{
				{Key: "gained", Label: "📌 今日签到积分"},
				{Key: "total", Label: "📊 您的总积分"},
			},
			Acceptable: defaultAcceptable,
		},
		{
			Name:            "sheerid",
			Title:           "Auto SheerID 签到通知",
			HeaderGlyph:     "🤖",
			Bot:             "@auto_sheerid_bot",
			Command:         "/qd",
			FollowupCommand: "/balance",
			Settle:          5 * time.Second,
			ScanWindow:      5,
			Correlation:     CorrelateLatest,
			SuccessKeywords: []string{"签到成功"},
			AlreadyKeywords: []string{"已经签到", "已签到"},
			Fields: []Field{
				{Key: "gained", Default: unknown},
				{Key: "total", Default: unknown},
			},
			CheckinRules: []Rule{
				{Field: "gained", Pattern: sheeridGainedRe, Format: suffixed(1, "分")},
				{Field: "total", Pattern: sheeridTotalRe, Format: suffixed(1, "分")},
			},
			// The balance reply's gained figure refers to the original
			// check-in day and is ignored; only the total is refreshed.
			QueryRules: []Rule{
				{Field: "total", Pattern: sheeridTotalRe, Format: suffixed(1, "分")},
			},
			NotifyLines: []NotifyLine{
				{Key: "gained", Label: "📌 今日获得"},
				{Key: "total", Label: "📊 当前总分"},
			},
			Acceptable: defaultAcceptable,
		},
		{
			Name:            "icmp9",
			Title:           "ICMP9 签到报告",
			HeaderGlyph:     "🤖",
			Bot:             "@ICMP9_Bot",
			Command:         "/checkin",
			Settle:          5 * time.Second,
			ScanWindow:      1,
			Correlation:     CorrelateLatest,
			SuccessKeywords: []string{"成功"},
			AlreadyKeywords: []string{"已签", "已经签到"},
			Fields: []Field{
				{Key: "user", Default: unknown},
				{Key: "gained", Default: unknown},
				{Key: "streak", Default: unknown},
				{Key: "total", Default: unknown},
				{Key: "used", Default: unknown},
				{Key: "remaining", Default: unknown},
				{Key: "vm_info", Default: unknown},
			},
			CheckinRules: append([]Rule{
				{Field: "gained", Pattern: icmpGainedRe, Format: icmpGainedFormat},
			}, icmpQuotaRules...),
			InlineRounds: []InlineRound{
				{
					Label: "账户",
					Row:   0,
					Col:   1,
					Rules: append([]Rule{
						{Field: "user", Pattern: icmpUserRe, Format: icmpUserFormat},
					}, icmpQuotaRules...),
				},
				{
					Label: "虚机",
					Row:   0,
					Col:   2,
					Rules: []Rule{
						{Field: "vm_info", Func: icmpVMListing},
					},
				},
			},
			NotifyLines: []NotifyLine{
				{Key: "user", Label: "👤 账户"},
				{Key: "gained", Label: "🎁 今日已获"},
				{Key: "streak", Label: "🔥 连续签到"},
				{Key: "total", Label: "📦 总配额"},
				{Key: "used", Label: "📈 已使用"},
				{Key: "remaining", Label: "📉 剩余量"},
				{Key: "vm_info", Label: "🖥️ 虚机列表"},
			},
			Acceptable: defaultAcceptable,
		},
	}
}

// ProviderByName looks a provider up in the given table.
func ProviderByName(providers []Provider, name string) (Provider, error) {
	for _, p := range providers {
		if p.Name == name {
			return p, nil
		}
	}
	return Provider{}, fmt.Errorf("unknown provider: %q", name)
}
