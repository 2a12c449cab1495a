package app

import (
	"context"
	"errors"
	"testing"

	"tg_checkin_bot/internal/domain/chat"
	"tg_checkin_bot/internal/domain/checkin"
)

func builtin(t *testing.T, name string) checkin.Provider {
	t.Helper()
	p, err := checkin.ProviderByName(checkin.BuiltinProviders(), name)
	if err != nil {
		t.Fatal(err)
	}
	p.Settle = 0 // no settle waits in tests
	return p
}

func newTestService(sess *fakeSession) (*CheckInService, *fakeNotifyClient, *fakeReportRepo) {
	client := &fakeNotifyClient{}
	repo := &fakeReportRepo{}
	svc := NewCheckInService(
		&fakeDialer{sess: sess},
		NewNotifyService(client, 42, testLogger()),
		repo,
		testLogger(),
	)
	return svc, client, repo
}

func TestRunSuccess(t *testing.T) {
	sess := &fakeSession{
		authorized: true,
		botID:      100,
		replies: [][]chat.Message{
			{{Text: "签到成功！获得积分：15 当前积分：230"}},
		},
	}
	svc, client, repo := newTestService(sess)
	p := builtin(t, "sheerid")

	report, err := svc.Run(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if report.Status != checkin.ClassSuccess {
		t.Fatalf("status = %s", report.Status)
	}
	if report.Fields["gained"] != "15分" || report.Fields["total"] != "230分" {
		t.Fatalf("fields: %v", report.Fields)
	}
	if len(sess.sends) != 1 || sess.sends[0] != "/qd" {
		t.Fatalf("sends: %v", sess.sends)
	}
	if len(client.sent) != 1 {
		t.Fatalf("notifications: %d", len(client.sent))
	}
	if len(repo.saved) != 1 {
		t.Fatalf("saved runs: %d", len(repo.saved))
	}
	if sess.closes != 1 {
		t.Fatalf("session closed %d times", sess.closes)
	}
}

func TestRunAlreadyDoneFollowUp(t *testing.T) {
	sess := &fakeSession{
		authorized: true,
		botID:      100,
		replies: [][]chat.Message{
			{{Text: "您今天已经签到过了"}},
			{{Text: "当前积分：500"}},
		},
	}
	svc, client, _ := newTestService(sess)
	p := builtin(t, "sheerid")

	report, err := svc.Run(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if report.Status != checkin.ClassAlreadyDone {
		t.Fatalf("status = %s", report.Status)
	}
	if report.Fields["total"] != "500分" {
		t.Fatalf("total = %q", report.Fields["total"])
	}
	if report.Fields["gained"] != "未知" {
		t.Fatalf("gained = %q, the balance reply must not set it", report.Fields["gained"])
	}
	if len(sess.sends) != 2 || sess.sends[1] != "/balance" {
		t.Fatalf("sends: %v", sess.sends)
	}
	if !p.AcceptableOutcome(report.Status) {
		t.Fatal("ALREADY_DONE must be an acceptable outcome")
	}
	if len(client.sent) != 1 {
		t.Fatalf("notifications: %d", len(client.sent))
	}
}

func TestRunFollowUpNoReplyKeepsAlreadyDone(t *testing.T) {
	sess := &fakeSession{
		authorized: true,
		botID:      100,
		replies: [][]chat.Message{
			{{Text: "您今天已经签到过了"}},
			// no batch for /balance: the bot stays silent
		},
	}
	svc, _, _ := newTestService(sess)

	report, err := svc.Run(context.Background(), builtin(t, "sheerid"))
	if err != nil {
		t.Fatal(err)
	}
	if report.Status != checkin.ClassAlreadyDone {
		t.Fatalf("status = %s, a silent follow-up must not downgrade", report.Status)
	}
}

func TestRunNoReply(t *testing.T) {
	sess := &fakeSession{authorized: true, botID: 100}
	svc, client, _ := newTestService(sess)
	p := builtin(t, "sheerid")

	report, err := svc.Run(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if report.Status != checkin.ClassNoReply {
		t.Fatalf("status = %s", report.Status)
	}
	if p.AcceptableOutcome(report.Status) {
		t.Fatal("NO_REPLY must not be acceptable")
	}
	if len(client.sent) != 1 {
		t.Fatalf("notifications: %d, want exactly one even without a reply", len(client.sent))
	}
	if sess.closes != 1 {
		t.Fatalf("session closed %d times, want exactly once", sess.closes)
	}
}

func TestRunTransportErrorStillCleansUp(t *testing.T) {
	sess := &fakeSession{
		authorized: true,
		botID:      100,
		sendErr:    errors.New("flood wait"),
	}
	svc, client, _ := newTestService(sess)

	report, err := svc.Run(context.Background(), builtin(t, "sheerid"))
	if err != nil {
		t.Fatal(err)
	}
	if report.Status != checkin.ClassTransportError {
		t.Fatalf("status = %s", report.Status)
	}
	if report.Error == "" {
		t.Fatal("transport error detail missing from report")
	}
	if len(client.sent) != 1 {
		t.Fatalf("notifications: %d", len(client.sent))
	}
	if sess.closes != 1 {
		t.Fatalf("session closed %d times", sess.closes)
	}
}

func TestRunAuthorizationExpired(t *testing.T) {
	sess := &fakeSession{authorized: false, botID: 100}
	svc, client, _ := newTestService(sess)

	_, err := svc.Run(context.Background(), builtin(t, "sheerid"))
	if !errors.Is(err, chat.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
	if len(client.sent) != 0 {
		t.Fatal("no notification must be sent for an unauthorized session")
	}
	if sess.closes != 1 {
		t.Fatalf("session closed %d times", sess.closes)
	}
	if len(sess.sends) != 0 {
		t.Fatalf("no commands must be sent, got %v", sess.sends)
	}
}

func TestRunChannelProviderResolvesBotSeparately(t *testing.T) {
	sess := &fakeSession{
		authorized: true,
		botID:      100,
		peers:      map[string]int64{"@cloudcatgroup": 200, "@CloudCatOfficialBot": 100},
		replies: [][]chat.Message{
			{{SenderID: 100, Text: "签到成功 获得 5 ⭐ 当前积分：230 ⭐"}},
		},
	}
	svc, _, _ := newTestService(sess)

	report, err := svc.Run(context.Background(), builtin(t, "cloudcat"))
	if err != nil {
		t.Fatal(err)
	}
	if report.Status != checkin.ClassSuccess {
		t.Fatalf("status = %s", report.Status)
	}
	if report.Fields["gained"] != "5 ⭐" || report.Fields["total"] != "230 ⭐" {
		t.Fatalf("fields: %v", report.Fields)
	}
}

func TestRunInlineRounds(t *testing.T) {
	buttons := [][]chat.Button{{
		{Label: "签到"}, {Label: "账户"}, {Label: "虚机"},
	}}
	sess := &fakeSession{
		authorized: true,
		botID:      100,
		replies: [][]chat.Message{
			{{Text: "✅ 签到成功，获得 1.5 GB 流量", Buttons: buttons}},
		},
		refreshQueue: []string{
			"📊 alice━━━━\n连续签到: 4\n配额: 100 GB\n已用: 20 GB\n剩余: 80 GB",
			"虚拟机列表\nvm-1 running",
		},
	}
	svc, _, _ := newTestService(sess)

	report, err := svc.Run(context.Background(), builtin(t, "icmp9"))
	if err != nil {
		t.Fatal(err)
	}
	if report.Status != checkin.ClassSuccess {
		t.Fatalf("status = %s", report.Status)
	}
	if len(sess.clicks) != 2 || sess.clicks[0] != [2]int{0, 1} || sess.clicks[1] != [2]int{0, 2} {
		t.Fatalf("clicks: %v", sess.clicks)
	}
	want := map[string]string{
		"gained":    "1.5 GB",
		"user":      "alice",
		"streak":    "4 天",
		"total":     "100 GB",
		"used":      "20 GB",
		"remaining": "80 GB",
		"vm_info":   "vm-1 running",
	}
	for k, v := range want {
		if report.Fields[k] != v {
			t.Fatalf("%s = %q, want %q (all fields: %v)", k, report.Fields[k], v, report.Fields)
		}
	}
}

func TestRunInlineRoundsMissingButtonsAreSoft(t *testing.T) {
	sess := &fakeSession{
		authorized: true,
		botID:      100,
		replies: [][]chat.Message{
			{{Text: "✅ 签到成功，获得 2 GB 流量"}}, // no inline keyboard
		},
	}
	svc, client, _ := newTestService(sess)

	report, err := svc.Run(context.Background(), builtin(t, "icmp9"))
	if err != nil {
		t.Fatal(err)
	}
	if report.Status != checkin.ClassSuccess {
		t.Fatalf("status = %s, missing buttons must not abort the run", report.Status)
	}
	if len(sess.clicks) != 0 {
		t.Fatalf("clicks: %v", sess.clicks)
	}
	if report.Fields["gained"] != "2 GB" {
		t.Fatalf("gained = %q", report.Fields["gained"])
	}
	if len(client.sent) != 1 {
		t.Fatalf("notifications: %d", len(client.sent))
	}
}
