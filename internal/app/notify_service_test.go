package app

import (
	"errors"
	"strings"
	"testing"

	"tg_checkin_bot/internal/domain/checkin"
)

func TestComposeNotification(t *testing.T) {
	p := builtin(t, "sheerid")
	report := &checkin.Report{
		Provider: p.Name,
		Status:   checkin.ClassSuccess,
		Fields:   checkin.Result{"gained": "15分", "total": "230分"},
	}

	msg := ComposeNotification(p, report)
	for _, want := range []string{
		"🤖 *Auto SheerID 签到通知* 🤖",
		"✅ 状态: 成功",
		"🎯 目标: [@auto_sheerid_bot](t.me/auto_sheerid_bot)",
		"📌 今日获得: 15分",
		"📊 当前总分: 230分",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestComposeNotificationGlyphs(t *testing.T) {
	cases := map[checkin.Classification]string{
		checkin.ClassSuccess:        "✅ 状态: 成功",
		checkin.ClassAlreadyDone:    "ℹ️ 状态: 今日已签到",
		checkin.ClassUnrecognized:   "❌ 状态: 未知响应",
		checkin.ClassNoReply:        "❌ 状态: 未收到回复",
		checkin.ClassTransportError: "❌ 状态: 错误",
	}
	p := builtin(t, "cloudcat")
	for status, want := range cases {
		msg := ComposeNotification(p, &checkin.Report{Status: status, Fields: checkin.Result{}})
		if !strings.Contains(msg, want) {
			t.Fatalf("status %s: missing %q:\n%s", status, want, msg)
		}
	}
}

func TestComposeNotificationChannelTarget(t *testing.T) {
	p := builtin(t, "cloudcat")
	msg := ComposeNotification(p, &checkin.Report{Status: checkin.ClassSuccess, Fields: checkin.Result{}})
	// A channel provider links the chat, not the bot behind it.
	if !strings.Contains(msg, "[@cloudcatgroup](t.me/cloudcatgroup)") {
		t.Fatalf("wrong target link:\n%s", msg)
	}
}

func TestNotifyWithoutClientIsSkipped(t *testing.T) {
	s := NewNotifyService(nil, 0, testLogger())
	// Must not panic and must not deliver anywhere.
	s.Notify(builtin(t, "sheerid"), &checkin.Report{Fields: checkin.Result{}})
}

func TestNotifySendsOnce(t *testing.T) {
	client := &fakeNotifyClient{}
	s := NewNotifyService(client, 42, testLogger())
	s.Notify(builtin(t, "sheerid"), &checkin.Report{Status: checkin.ClassSuccess, Fields: checkin.Result{}})
	if len(client.sent) != 1 {
		t.Fatalf("sent %d messages", len(client.sent))
	}
	if client.chatIDs[0] != 42 {
		t.Fatalf("chat id = %d", client.chatIDs[0])
	}
}

func TestNotifyDeliveryFailureIsSwallowed(t *testing.T) {
	client := &fakeNotifyClient{err: errors.New("api down")}
	s := NewNotifyService(client, 42, testLogger())
	s.Notify(builtin(t, "sheerid"), &checkin.Report{Status: checkin.ClassSuccess, Fields: checkin.Result{}})
	if len(client.sent) != 0 {
		t.Fatalf("sent %d messages despite the error", len(client.sent))
	}
}
