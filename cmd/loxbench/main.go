// Command loxbench measures per-protocol latency of the Lox protocol
// engine and renders it as a bar chart, the legitimate home this
// module found for the go-chart dependency the teacher's own cmd/bench
// declares but never wires to a real package.
package main

import (
	"crypto/rand"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/asv/lox/bridgeauth"
	"github.com/asv/lox/client"
	"github.com/asv/lox/cred"
	"github.com/asv/lox/group"
	"github.com/asv/lox/issuer"
)

// phaseTimes accumulates the three phases every protocol round trip
// breaks into: building the request, the issuer handling it, and the
// client processing the response.
type phaseTimes struct {
	request        time.Duration
	handle         time.Duration
	handleResponse time.Duration
}

func (p phaseTimes) total() time.Duration { return p.request + p.handle + p.handleResponse }

func main() {
	iterations := flag.Int("n", 200, "iterations per protocol")
	out := flag.String("out", "loxbench.png", "output chart file (.png or .svg)")
	flag.Parse()

	iss, keys, err := setupIssuer()
	if err != nil {
		fail(err)
	}

	protocols := []struct {
		name string
		run  func(n int) (phaseTimes, error)
	}{
		{"open_invite", func(n int) (phaseTimes, error) { return benchOpenInvite(iss, keys, n) }},
		{"trust_promotion", func(n int) (phaseTimes, error) { return benchTrustPromotion(iss, keys, n) }},
		{"migration", func(n int) (phaseTimes, error) { return benchMigration(iss, keys, n) }},
		{"level_up", func(n int) (phaseTimes, error) { return benchLevelUp(iss, keys, n) }},
		{"issue_invite", func(n int) (phaseTimes, error) { return benchIssueInvite(iss, keys, n) }},
		{"redeem_invite", func(n int) (phaseTimes, error) { return benchRedeemInvite(iss, keys, n) }},
		{"check_blockage", func(n int) (phaseTimes, error) { return benchCheckBlockage(iss, keys, n) }},
		{"blockage_migration", func(n int) (phaseTimes, error) { return benchBlockageMigration(iss, keys, n) }},
	}

	bars := make([]chart.Value, 0, len(protocols))
	for _, p := range protocols {
		avg, err := p.run(*iterations)
		if err != nil {
			fail(fmt.Errorf("%s: %w", p.name, err))
		}
		fmt.Printf("%-20s request=%-12s handle=%-12s handle_response=%-12s total=%s\n",
			p.name, avg.request, avg.handle, avg.handleResponse, avg.total())
		bars = append(bars, chart.Value{Value: float64(avg.total().Microseconds()), Label: p.name})
	}

	if err := renderChart(bars, *out); err != nil {
		fail(err)
	}
	fmt.Printf("wrote %s\n", *out)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "loxbench: %v\n", err)
	os.Exit(1)
}

func renderChart(bars []chart.Value, path string) error {
	barChart := chart.BarChart{
		Title:      "Lox protocol latency (microseconds, total of request+handle+handle_response)",
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		Width:      1024,
		Height:     512,
		BarWidth:   60,
		Bars:       bars,
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	renderer := chart.PNG
	if len(path) > 4 && path[len(path)-4:] == ".svg" {
		renderer = chart.SVG
	}
	return barChart.Render(renderer, f)
}

// --- fixtures ---

type issuerKeys struct {
	lox          *cred.PublicKey
	migration    *cred.PublicKey
	invitation   *cred.PublicKey
	bucketReach  *cred.PublicKey
	migrationKey *cred.PublicKey
}

const (
	benchBucketA = 0
	benchBucketB = 1
	benchBucketC = 2
	benchToday   = 1000
)

func setupIssuer() (*issuer.Issuer, issuerKeys, error) {
	bridges := bridgeauth.NewBridgeTable()
	for _, b := range []uint32{benchBucketA, benchBucketB, benchBucketC} {
		if err := bridges.AddBucket(b, []bridgeauth.BridgeLine{{Descriptor: "bench bridge"}}, rand.Reader); err != nil {
			return nil, issuerKeys{}, err
		}
	}
	authKey := make([]byte, 32)
	if _, err := rand.Read(authKey); err != nil {
		return nil, issuerKeys{}, err
	}
	iss, err := issuer.New(bridges, bridgeauth.NewHMACAuth(authKey), bridgeauth.FixedDate(benchToday), rand.Reader)
	if err != nil {
		return nil, issuerKeys{}, err
	}
	iss.RegisterMigration(cred.TrustUpgrade, benchBucketA, benchBucketB)
	iss.RegisterMigration(cred.Blockage, benchBucketB, benchBucketC)

	keys := issuerKeys{
		lox:          iss.Lox.Current().Pub,
		migration:    iss.Migration.Current().Pub,
		invitation:   iss.Invitation.Current().Pub,
		bucketReach:  iss.BucketReach.Current().Pub,
		migrationKey: iss.MigrationKey.Current().Pub,
	}
	return iss, keys, nil
}

// mintLox signs a Lox attribute set directly under the issuer's
// current key, bypassing whatever protocol would normally produce it.
// Benchmarks measure one protocol's own cost, not the cost of
// reaching the state that protocol requires as input.
func mintLox(iss *issuer.Issuer, bucketID uint32, trustLevel, levelSince, invites, blockages uint32) (*cred.MAC, cred.LoxAttrs, error) {
	id, err := group.RandomScalar(rand.Reader)
	if err != nil {
		return nil, cred.LoxAttrs{}, err
	}
	attrs := cred.LoxAttrs{
		ID:               id,
		Bucket:           cred.PackBucket(bucketID, iss.Bridges.Keys[bucketID]),
		TrustLevel:       group.FromUint64(uint64(trustLevel)),
		LevelSince:       group.FromUint64(uint64(levelSince)),
		InvitesRemaining: group.FromUint64(uint64(invites)),
		Blockages:        group.FromUint64(uint64(blockages)),
	}
	mac, err := cred.Issue(iss.Lox.Current().Priv, attrs.Slice(), rand.Reader)
	return mac, attrs, err
}

func mintMigration(iss *issuer.Issuer, id *group.Scalar, from, to uint32, typ cred.MigrationType) (*cred.MAC, cred.MigrationAttrs, error) {
	attrs := cred.MigrationAttrs{LoxID: id, FromBucket: cred.PackBucket(from, iss.Bridges.Keys[from]), ToBucket: cred.PackBucket(to, iss.Bridges.Keys[to]), Type: typ}
	mac, err := cred.Issue(iss.Migration.Current().Priv, attrs.Slice(), rand.Reader)
	return mac, attrs, err
}

func mintInvitation(iss *issuer.Issuer, bucketID uint32, dateDay uint32, blockages uint32) (*cred.MAC, cred.InvitationAttrs, error) {
	invID, err := group.RandomScalar(rand.Reader)
	if err != nil {
		return nil, cred.InvitationAttrs{}, err
	}
	attrs := cred.InvitationAttrs{
		InvID:     invID,
		Date:      group.FromUint64(uint64(dateDay)),
		Bucket:    cred.PackBucket(bucketID, iss.Bridges.Keys[bucketID]),
		Blockages: group.FromUint64(uint64(blockages)),
	}
	mac, err := cred.Issue(iss.Invitation.Current().Priv, attrs.Slice(), rand.Reader)
	return mac, attrs, err
}

// --- per-protocol benchmarks ---

func benchOpenInvite(iss *issuer.Issuer, keys issuerKeys, n int) (phaseTimes, error) {
	var acc phaseTimes
	auth := iss.Auth.(*bridgeauth.HMACAuth)
	for i := 0; i < n; i++ {
		inviteID, err := group.RandomScalar(rand.Reader)
		if err != nil {
			return acc, err
		}
		token := auth.Issue(inviteID, benchBucketA)

		t0 := time.Now()
		req, state, err := client.RequestOpenInvite(token, rand.Reader)
		acc.request += time.Since(t0)
		if err != nil {
			return acc, err
		}

		t1 := time.Now()
		resp, err := iss.HandleOpenInvite(req, rand.Reader)
		acc.handle += time.Since(t1)
		if err != nil {
			return acc, err
		}

		t2 := time.Now()
		_, _, _, err = client.HandleOpenInviteResponse(state, resp, keys.lox)
		acc.handleResponse += time.Since(t2)
		if err != nil {
			return acc, err
		}
	}
	return average(acc, n), nil
}

func benchTrustPromotion(iss *issuer.Issuer, keys issuerKeys, n int) (phaseTimes, error) {
	var acc phaseTimes
	for i := 0; i < n; i++ {
		mac, attrs, err := mintLox(iss, benchBucketA, 0, benchToday, 0, 0)
		if err != nil {
			return acc, err
		}

		t0 := time.Now()
		req, state, err := client.RequestTrustPromotion(keys.lox, mac, attrs, rand.Reader)
		acc.request += time.Since(t0)
		if err != nil {
			return acc, err
		}

		t1 := time.Now()
		resp, err := iss.HandleTrustPromotion(req, rand.Reader)
		acc.handle += time.Since(t1)
		if err != nil {
			return acc, err
		}

		t2 := time.Now()
		_, _, err = client.HandleTrustPromotionResponse(state, resp, keys.migrationKey)
		acc.handleResponse += time.Since(t2)
		if err != nil {
			return acc, err
		}
	}
	return average(acc, n), nil
}

func benchMigration(iss *issuer.Issuer, keys issuerKeys, n int) (phaseTimes, error) {
	var acc phaseTimes
	for i := 0; i < n; i++ {
		loxMAC, loxAttrs, err := mintLox(iss, benchBucketA, 0, benchToday, 0, 0)
		if err != nil {
			return acc, err
		}
		migMAC, migAttrs, err := mintMigration(iss, loxAttrs.ID, benchBucketA, benchBucketB, cred.TrustUpgrade)
		if err != nil {
			return acc, err
		}

		t0 := time.Now()
		req, state, err := client.RequestMigration(keys.lox, keys.migration, loxMAC, loxAttrs, migMAC, migAttrs, rand.Reader)
		acc.request += time.Since(t0)
		if err != nil {
			return acc, err
		}

		t1 := time.Now()
		resp, err := iss.HandleMigration(req, rand.Reader)
		acc.handle += time.Since(t1)
		if err != nil {
			return acc, err
		}

		t2 := time.Now()
		_, _, err = client.HandleMigrationResponse(state, resp, keys.lox)
		acc.handleResponse += time.Since(t2)
		if err != nil {
			return acc, err
		}
	}
	return average(acc, n), nil
}

func benchLevelUp(iss *issuer.Issuer, keys issuerKeys, n int) (phaseTimes, error) {
	var acc phaseTimes
	for i := 0; i < n; i++ {
		levelSince := benchToday - cred.LevelInterval[1]
		loxMAC, loxAttrs, err := mintLox(iss, benchBucketA, 1, levelSince, 0, 0)
		if err != nil {
			return acc, err
		}
		bucketReachMAC, bucketReachAttrs, err := iss.BucketReachabilityFor(benchBucketA, rand.Reader)
		if err != nil {
			return acc, err
		}

		t0 := time.Now()
		req, state, err := client.RequestLevelUp(keys.lox, keys.bucketReach, loxMAC, loxAttrs, bucketReachMAC, bucketReachAttrs, benchToday, levelSince, rand.Reader)
		acc.request += time.Since(t0)
		if err != nil {
			return acc, err
		}

		t1 := time.Now()
		resp, err := iss.HandleLevelUp(req, rand.Reader)
		acc.handle += time.Since(t1)
		if err != nil {
			return acc, err
		}

		t2 := time.Now()
		_, _, err = client.HandleLevelUpResponse(state, resp, keys.lox)
		acc.handleResponse += time.Since(t2)
		if err != nil {
			return acc, err
		}
	}
	return average(acc, n), nil
}

func benchIssueInvite(iss *issuer.Issuer, keys issuerKeys, n int) (phaseTimes, error) {
	var acc phaseTimes
	for i := 0; i < n; i++ {
		loxMAC, loxAttrs, err := mintLox(iss, benchBucketA, 1, benchToday, 3, 0)
		if err != nil {
			return acc, err
		}
		bucketReachMAC, bucketReachAttrs, err := iss.BucketReachabilityFor(benchBucketA, rand.Reader)
		if err != nil {
			return acc, err
		}

		t0 := time.Now()
		req, state, err := client.RequestIssueInvite(keys.lox, keys.bucketReach, loxMAC, loxAttrs, bucketReachMAC, bucketReachAttrs, rand.Reader)
		acc.request += time.Since(t0)
		if err != nil {
			return acc, err
		}

		t1 := time.Now()
		resp, err := iss.HandleIssueInvite(req, rand.Reader)
		acc.handle += time.Since(t1)
		if err != nil {
			return acc, err
		}

		t2 := time.Now()
		_, _, _, _, err = client.HandleIssueInviteResponse(state, resp, keys.lox, keys.invitation)
		acc.handleResponse += time.Since(t2)
		if err != nil {
			return acc, err
		}
	}
	return average(acc, n), nil
}

func benchRedeemInvite(iss *issuer.Issuer, keys issuerKeys, n int) (phaseTimes, error) {
	var acc phaseTimes
	for i := 0; i < n; i++ {
		invMAC, invAttrs, err := mintInvitation(iss, benchBucketA, benchToday, 0)
		if err != nil {
			return acc, err
		}

		t0 := time.Now()
		req, state, err := client.RequestRedeemInvite(keys.invitation, invMAC, invAttrs, benchToday, benchToday, rand.Reader)
		acc.request += time.Since(t0)
		if err != nil {
			return acc, err
		}

		t1 := time.Now()
		resp, err := iss.HandleRedeemInvite(req, rand.Reader)
		acc.handle += time.Since(t1)
		if err != nil {
			return acc, err
		}

		t2 := time.Now()
		_, _, err = client.HandleRedeemInviteResponse(state, resp, keys.lox)
		acc.handleResponse += time.Since(t2)
		if err != nil {
			return acc, err
		}
	}
	return average(acc, n), nil
}

func benchCheckBlockage(iss *issuer.Issuer, keys issuerKeys, n int) (phaseTimes, error) {
	var acc phaseTimes
	for i := 0; i < n; i++ {
		mac, attrs, err := mintLox(iss, benchBucketB, cred.MinTrustLevelForBlockageCheck, benchToday, 0, 0)
		if err != nil {
			return acc, err
		}

		t0 := time.Now()
		req, state, err := client.RequestCheckBlockage(keys.lox, mac, attrs, rand.Reader)
		acc.request += time.Since(t0)
		if err != nil {
			return acc, err
		}

		t1 := time.Now()
		resp, err := iss.HandleCheckBlockage(req, rand.Reader)
		acc.handle += time.Since(t1)
		if err != nil {
			return acc, err
		}

		t2 := time.Now()
		_, _, err = client.HandleCheckBlockageResponse(state, resp, keys.migrationKey)
		acc.handleResponse += time.Since(t2)
		if err != nil {
			return acc, err
		}
	}
	return average(acc, n), nil
}

func benchBlockageMigration(iss *issuer.Issuer, keys issuerKeys, n int) (phaseTimes, error) {
	var acc phaseTimes
	for i := 0; i < n; i++ {
		loxMAC, loxAttrs, err := mintLox(iss, benchBucketB, cred.MinTrustLevelForBlockageCheck, benchToday, 0, 0)
		if err != nil {
			return acc, err
		}
		migMAC, migAttrs, err := mintMigration(iss, loxAttrs.ID, benchBucketB, benchBucketC, cred.Blockage)
		if err != nil {
			return acc, err
		}

		t0 := time.Now()
		req, state, err := client.RequestBlockageMigration(keys.lox, keys.migration, loxMAC, loxAttrs, migMAC, migAttrs, rand.Reader)
		acc.request += time.Since(t0)
		if err != nil {
			return acc, err
		}

		t1 := time.Now()
		resp, err := iss.HandleBlockageMigration(req, rand.Reader)
		acc.handle += time.Since(t1)
		if err != nil {
			return acc, err
		}

		t2 := time.Now()
		_, _, err = client.HandleBlockageMigrationResponse(state, resp, keys.lox)
		acc.handleResponse += time.Since(t2)
		if err != nil {
			return acc, err
		}
	}
	return average(acc, n), nil
}

func average(acc phaseTimes, n int) phaseTimes {
	return phaseTimes{
		request:        acc.request / time.Duration(n),
		handle:         acc.handle / time.Duration(n),
		handleResponse: acc.handleResponse / time.Duration(n),
	}
}

var _ io.Reader = rand.Reader
