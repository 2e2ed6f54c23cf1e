package app

import (
	"sort"
	"strings"

	"github.com/vendorrisk/golang_services/internal/campaign_service/domain"
)

// deliveryTarget is one address to record and, when possible, transmit to.
type deliveryTarget struct {
	Channel domain.Channel
	Address string
}

// channelAddresses groups recipient addresses by channel. Vendors come before
// clients inside every channel and empty addresses are dropped.
func channelAddresses(rcpts recipients) map[domain.Channel][]string {
	out := map[domain.Channel][]string{
		domain.ChannelPrimary: {},
		domain.ChannelSupport: {},
		domain.ChannelInfoSec: {},
		domain.ChannelPrivacy: {},
	}
	add := func(ch domain.Channel, addr string) {
		if addr = strings.TrimSpace(addr); addr != "" {
			out[ch] = append(out[ch], addr)
		}
	}

	for _, v := range rcpts.vendors {
		add(domain.ChannelSupport, v.SupportEmail)
		add(domain.ChannelInfoSec, v.InfoSecEmail)
		add(domain.ChannelPrivacy, v.PrivacyEmail)
	}
	for _, c := range rcpts.clients {
		add(domain.ChannelInfoSec, c.InfoSecEmail)
		add(domain.ChannelPrivacy, c.PrivacyEmail)
	}
	for _, v := range rcpts.vendors {
		for _, u := range v.Users {
			add(domain.ChannelPrimary, u.Email)
		}
	}
	for _, c := range rcpts.clients {
		for _, u := range c.Users {
			add(domain.ChannelPrimary, u.Email)
		}
	}
	return out
}

// emailTypes merges to, cc and bcc into a sorted set of channel keys.
func emailTypes(tmpl domain.CampaignEmail) []domain.Channel {
	seen := make(map[string]struct{})
	var keys []string
	for _, list := range [][]string{tmpl.To, tmpl.CC, tmpl.BCC} {
		for _, k := range list {
			k = strings.TrimSpace(k)
			if k == "" {
				continue
			}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	types := make([]domain.Channel, 0, len(keys))
	for _, k := range keys {
		types = append(types, domain.Channel(k))
	}
	return types
}

// classifyEmails expands the template's channels into ordered delivery targets.
// Unknown channel keys produce no targets.
func classifyEmails(rcpts recipients, tmpl domain.CampaignEmail) []deliveryTarget {
	byChannel := channelAddresses(rcpts)
	var targets []deliveryTarget
	for _, ch := range emailTypes(tmpl) {
		if !ch.Known() {
			continue
		}
		for _, addr := range byChannel[ch] {
			targets = append(targets, deliveryTarget{Channel: ch, Address: addr})
		}
	}
	return targets
}
