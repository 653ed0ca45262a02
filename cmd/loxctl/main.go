// Command loxctl is an issuer-admin and user-flow utility for the Lox
// protocol engine, in the spirit of cmd/credgen's subcommand dispatch:
// a flat command table, one flag.FlagSet per subcommand, and JSON file
// I/O for every request/response/credential blob it touches.
package main

import (
	"crypto/rand"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/asv/lox/bridgeauth"
	"github.com/asv/lox/client"
	"github.com/asv/lox/cred"
	"github.com/asv/lox/group"
	"github.com/asv/lox/issuer"
)

// Command is one loxctl subcommand.
type Command struct {
	Name        string
	Description string
	Execute     func(args []string) error
}

func main() {
	commands := []Command{
		{"issuer-init", "Generate a fresh issuer key/bridge-table bundle", cmdIssuerInit},
		{"issuer-rotate", "Rotate one credential type's issuer key", cmdIssuerRotate},
		{"issuer-register-migration", "Register a (from,to) migration route", cmdIssuerRegisterMigration},
		{"issuer-token", "Mint a bridge-distribution invitation token", cmdIssuerToken},
		{"issuer-bucket-reach", "Dump today's BucketReachability credential for a bucket", cmdIssuerBucketReach},
		{"issuer-serve", "Serve one request/response round trip for a named protocol", cmdIssuerServe},
		{"bootstrap", "Redeem an invitation token into a fresh Lox credential", cmdBootstrap},
		{"trust-promote", "Request a TrustUpgrade Migration credential", cmdTrustPromote},
		{"migrate", "Apply a Migration credential to move to a new bucket", cmdMigrate},
		{"level-up", "Level up a Lox credential one trust level", cmdLevelUp},
		{"issue-invite", "Spend an invite to mint an Invitation credential", cmdIssueInvite},
		{"redeem-invite", "Redeem someone else's Invitation credential into a Lox credential", cmdRedeemInvite},
		{"check-blockage", "Request a Blockage Migration credential", cmdCheckBlockage},
		{"blockage-migrate", "Apply a Blockage Migration credential", cmdBlockageMigrate},
	}

	if len(os.Args) < 2 {
		showHelp(commands)
		os.Exit(1)
	}
	name := os.Args[1]
	for _, c := range commands {
		if c.Name == name {
			if err := c.Execute(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "loxctl: %v\n", err)
				os.Exit(1)
			}
			return
		}
	}
	fmt.Fprintf(os.Stderr, "loxctl: unknown command %q\n\n", name)
	showHelp(commands)
	os.Exit(1)
}

func showHelp(commands []Command) {
	fmt.Println("loxctl - issuer-admin and user-flow utility for the Lox protocol engine")
	fmt.Println("\nUsage:\n  loxctl <command> [options]")
	fmt.Println("\nCommands:")
	for _, c := range commands {
		fmt.Printf("  %-26s %s\n", c.Name, c.Description)
	}
}

// --- JSON file I/O helpers ---

func readJSON(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return nil
}

// IssuerConfig is the persisted half of an Issuer's state loxctl reads
// and writes between invocations: its current keys, bridge inventory,
// bridge-distribution auth key, registered migration routes, and
// DateSource day. Replay filters and retired key generations do not
// survive a reload (see issuer.NewTypeHistoryFromKey); this is a
// diagnostic-tool limitation, not a property of the protocol.
type IssuerConfig struct {
	Keys       issuer.KeyBundle
	Bridges    *bridgeauth.BridgeTable
	AuthKey    []byte
	Today      uint32
	Migrations map[cred.MigrationType][]issuer.MigrationPair
}

func loadIssuer(path string) (*issuer.Issuer, *IssuerConfig, error) {
	var cfg IssuerConfig
	if err := readJSON(path, &cfg); err != nil {
		return nil, nil, err
	}
	iss := issuer.NewFromKeyBundle(cfg.Keys, cfg.Bridges, bridgeauth.NewHMACAuth(cfg.AuthKey), bridgeauth.FixedDate(cfg.Today))
	for migType, pairs := range cfg.Migrations {
		for _, p := range pairs {
			iss.RegisterMigration(migType, p.From, p.To)
		}
	}
	return iss, &cfg, nil
}

// Credential blobs: the exported, JSON-serializable shape of one
// credential a user command reads or writes.
type LoxCredBlob struct {
	MAC   *cred.MAC
	Attrs cred.LoxAttrs
}

type InvitationCredBlob struct {
	MAC   *cred.MAC
	Attrs cred.InvitationAttrs
}

type MigrationCredBlob struct {
	MAC   *cred.MAC
	Attrs cred.MigrationAttrs
}

// --- issuer-admin commands ---

func cmdIssuerInit(args []string) error {
	fs := flag.NewFlagSet("issuer-init", flag.ExitOnError)
	out := fs.String("out", "issuer.json", "output issuer config file")
	buckets := fs.Int("buckets", 4, "number of bridge buckets to seed")
	fs.Parse(args)

	bridges := bridgeauth.NewBridgeTable()
	for i := 0; i < *buckets; i++ {
		lines := []bridgeauth.BridgeLine{{Descriptor: fmt.Sprintf("bridge %d obfs4 0.0.0.0:0 cert=... iat-mode=0", i)}}
		if err := bridges.AddBucket(uint32(i), lines, rand.Reader); err != nil {
			return err
		}
	}
	authKey := make([]byte, 32)
	if _, err := rand.Read(authKey); err != nil {
		return err
	}
	iss, err := issuer.New(bridges, bridgeauth.NewHMACAuth(authKey), bridgeauth.FixedDate(0), rand.Reader)
	if err != nil {
		return err
	}
	cfg := IssuerConfig{Keys: iss.KeyBundle(), Bridges: bridges, AuthKey: authKey, Today: 0, Migrations: map[cred.MigrationType][]issuer.MigrationPair{}}
	fmt.Printf("generated issuer with %d buckets\n", *buckets)
	return writeJSON(*out, cfg)
}

func cmdIssuerRotate(args []string) error {
	fs := flag.NewFlagSet("issuer-rotate", flag.ExitOnError)
	state := fs.String("state", "issuer.json", "issuer config file")
	typ := fs.String("type", "lox", "credential type: lox|migration|invitation|bucketreach|migrationkey")
	fs.Parse(args)

	iss, cfg, err := loadIssuer(*state)
	if err != nil {
		return err
	}
	switch *typ {
	case "lox":
		err = iss.Lox.Rotate(cred.LoxNumAttrs, rand.Reader)
	case "migration":
		err = iss.Migration.Rotate(cred.MigrationNumAttrs, rand.Reader)
	case "invitation":
		err = iss.Invitation.Rotate(cred.InvitationNumAttrs, rand.Reader)
	case "bucketreach":
		err = iss.BucketReach.Rotate(cred.BucketReachNumAttrs, rand.Reader)
	case "migrationkey":
		err = iss.MigrationKey.Rotate(cred.MigrationKeyNumAttrs, rand.Reader)
	default:
		return fmt.Errorf("unknown credential type %q", *typ)
	}
	if err != nil {
		return err
	}
	cfg.Keys = iss.KeyBundle()
	fmt.Printf("rotated %s key\n", *typ)
	return writeJSON(*state, *cfg)
}

func cmdIssuerRegisterMigration(args []string) error {
	fs := flag.NewFlagSet("issuer-register-migration", flag.ExitOnError)
	state := fs.String("state", "issuer.json", "issuer config file")
	typ := fs.String("type", "trust", "migration type: trust|blockage")
	from := fs.Uint("from", 0, "from bucket id")
	to := fs.Uint("to", 0, "to bucket id")
	fs.Parse(args)

	_, cfg, err := loadIssuer(*state)
	if err != nil {
		return err
	}
	migType := cred.TrustUpgrade
	if *typ == "blockage" {
		migType = cred.Blockage
	}
	if cfg.Migrations == nil {
		cfg.Migrations = map[cred.MigrationType][]issuer.MigrationPair{}
	}
	cfg.Migrations[migType] = append(cfg.Migrations[migType], issuer.MigrationPair{From: uint32(*from), To: uint32(*to)})
	fmt.Printf("registered %s route %d -> %d\n", *typ, *from, *to)
	return writeJSON(*state, *cfg)
}

func cmdIssuerToken(args []string) error {
	fs := flag.NewFlagSet("issuer-token", flag.ExitOnError)
	state := fs.String("state", "issuer.json", "issuer config file")
	bucket := fs.Uint("bucket", 0, "bucket id to invite into")
	out := fs.String("out", "token.json", "output token file")
	fs.Parse(args)

	var cfg IssuerConfig
	if err := readJSON(*state, &cfg); err != nil {
		return err
	}
	auth := bridgeauth.NewHMACAuth(cfg.AuthKey)
	inviteID, err := group.RandomScalar(rand.Reader)
	if err != nil {
		return err
	}
	token := auth.Issue(inviteID, uint32(*bucket))
	return writeJSON(*out, struct{ Token []byte }{Token: token})
}

func cmdIssuerBucketReach(args []string) error {
	fs := flag.NewFlagSet("issuer-bucket-reach", flag.ExitOnError)
	state := fs.String("state", "issuer.json", "issuer config file")
	bucket := fs.Uint("bucket", 0, "bucket id")
	out := fs.String("out", "bucketreach.json", "output credential file")
	fs.Parse(args)

	iss, _, err := loadIssuer(*state)
	if err != nil {
		return err
	}
	mac, attrs, err := iss.BucketReachabilityFor(uint32(*bucket), rand.Reader)
	if err != nil {
		return err
	}
	return writeJSON(*out, struct {
		MAC   *cred.MAC
		Attrs cred.BucketReachAttrs
	}{mac, attrs})
}

// cmdIssuerServe unmarshals a request JSON file, dispatches to the named
// protocol's issuer handler, and marshals the response JSON file. It
// is the one place loxctl demonstrates the transport-level
// request/response round trip named in the Session contract: a real
// deployment would replace the two readJSON/writeJSON calls with
// whatever network transport it uses.
func cmdIssuerServe(args []string) error {
	fs := flag.NewFlagSet("issuer-serve", flag.ExitOnError)
	state := fs.String("state", "issuer.json", "issuer config file")
	proto := fs.String("proto", "", "protocol name (open_invite|trust_promotion|migration|level_up|issue_invite|redeem_invite|check_blockage|blockage_migration|update_cred|update_invite)")
	reqFile := fs.String("request", "request.json", "request JSON file")
	respFile := fs.String("response", "response.json", "response JSON file")
	fs.Parse(args)

	iss, _, err := loadIssuer(*state)
	if err != nil {
		return err
	}
	switch *proto {
	case "open_invite":
		var req issuer.OpenInviteRequest
		if err := readJSON(*reqFile, &req); err != nil {
			return err
		}
		resp, err := iss.HandleOpenInvite(&req, rand.Reader)
		if err != nil {
			return err
		}
		return writeJSON(*respFile, resp)
	case "trust_promotion":
		var req issuer.TrustPromotionRequest
		if err := readJSON(*reqFile, &req); err != nil {
			return err
		}
		resp, err := iss.HandleTrustPromotion(&req, rand.Reader)
		if err != nil {
			return err
		}
		return writeJSON(*respFile, resp)
	case "migration":
		var req issuer.MigrationRequest
		if err := readJSON(*reqFile, &req); err != nil {
			return err
		}
		resp, err := iss.HandleMigration(&req, rand.Reader)
		if err != nil {
			return err
		}
		return writeJSON(*respFile, resp)
	case "level_up":
		var req issuer.LevelUpRequest
		if err := readJSON(*reqFile, &req); err != nil {
			return err
		}
		resp, err := iss.HandleLevelUp(&req, rand.Reader)
		if err != nil {
			return err
		}
		return writeJSON(*respFile, resp)
	case "issue_invite":
		var req issuer.IssueInviteRequest
		if err := readJSON(*reqFile, &req); err != nil {
			return err
		}
		resp, err := iss.HandleIssueInvite(&req, rand.Reader)
		if err != nil {
			return err
		}
		return writeJSON(*respFile, resp)
	case "redeem_invite":
		var req issuer.RedeemInviteRequest
		if err := readJSON(*reqFile, &req); err != nil {
			return err
		}
		resp, err := iss.HandleRedeemInvite(&req, rand.Reader)
		if err != nil {
			return err
		}
		return writeJSON(*respFile, resp)
	case "check_blockage":
		var req issuer.CheckBlockageRequest
		if err := readJSON(*reqFile, &req); err != nil {
			return err
		}
		resp, err := iss.HandleCheckBlockage(&req, rand.Reader)
		if err != nil {
			return err
		}
		return writeJSON(*respFile, resp)
	case "blockage_migration":
		var req issuer.BlockageMigrationRequest
		if err := readJSON(*reqFile, &req); err != nil {
			return err
		}
		resp, err := iss.HandleBlockageMigration(&req, rand.Reader)
		if err != nil {
			return err
		}
		return writeJSON(*respFile, resp)
	case "update_cred":
		var req issuer.UpdateCredRequest
		if err := readJSON(*reqFile, &req); err != nil {
			return err
		}
		resp, err := iss.HandleUpdateCred(&req, rand.Reader)
		if err != nil {
			return err
		}
		return writeJSON(*respFile, resp)
	case "update_invite":
		var req issuer.UpdateInviteRequest
		if err := readJSON(*reqFile, &req); err != nil {
			return err
		}
		resp, err := iss.HandleUpdateInvite(&req, rand.Reader)
		if err != nil {
			return err
		}
		return writeJSON(*respFile, resp)
	default:
		return fmt.Errorf("unknown protocol %q", *proto)
	}
}

// --- user commands ---
//
// Each of these loads the issuer in-process (loxctl has no real
// network transport of its own) and runs a protocol's full
// request/handle/handle-response round trip in one invocation,
// reading and writing only the resulting credential blobs as JSON.
// issuer-serve above is the command that demonstrates the
// request/response halves as separate files.

func cmdBootstrap(args []string) error {
	fs := flag.NewFlagSet("bootstrap", flag.ExitOnError)
	state := fs.String("state", "issuer.json", "issuer config file")
	bucket := fs.Uint("bucket", 0, "bucket id to invite into")
	out := fs.String("out", "lox.json", "output Lox credential file")
	fs.Parse(args)

	iss, cfg, err := loadIssuer(*state)
	if err != nil {
		return err
	}
	auth := bridgeauth.NewHMACAuth(cfg.AuthKey)
	inviteID, err := group.RandomScalar(rand.Reader)
	if err != nil {
		return err
	}
	token := auth.Issue(inviteID, uint32(*bucket))

	req, clientState, err := client.RequestOpenInvite(token, rand.Reader)
	if err != nil {
		return err
	}
	resp, err := iss.HandleOpenInvite(req, rand.Reader)
	if err != nil {
		return err
	}
	mac, attrs, bridge, err := client.HandleOpenInviteResponse(clientState, resp, cfg.Keys.LoxPub)
	if err != nil {
		return err
	}
	fmt.Printf("bootstrapped Lox credential; bridge: %s\n", bridge.Descriptor)
	return writeJSON(*out, LoxCredBlob{MAC: mac, Attrs: attrs})
}

func cmdTrustPromote(args []string) error {
	fs := flag.NewFlagSet("trust-promote", flag.ExitOnError)
	state := fs.String("state", "issuer.json", "issuer config file")
	credFile := fs.String("cred", "lox.json", "input Lox credential file")
	out := fs.String("out", "migration.json", "output Migration credential file")
	fs.Parse(args)

	iss, cfg, err := loadIssuer(*state)
	if err != nil {
		return err
	}
	var lox LoxCredBlob
	if err := readJSON(*credFile, &lox); err != nil {
		return err
	}
	req, clientState, err := client.RequestTrustPromotion(cfg.Keys.LoxPub, lox.MAC, lox.Attrs, rand.Reader)
	if err != nil {
		return err
	}
	resp, err := iss.HandleTrustPromotion(req, rand.Reader)
	if err != nil {
		return err
	}
	mac, attrs, err := client.HandleTrustPromotionResponse(clientState, resp, cfg.Keys.MigrationKeyPub)
	if err != nil {
		return err
	}
	return writeJSON(*out, MigrationCredBlob{MAC: mac, Attrs: attrs})
}

func cmdMigrate(args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	state := fs.String("state", "issuer.json", "issuer config file")
	loxFile := fs.String("lox-cred", "lox.json", "input Lox credential file")
	migFile := fs.String("mig-cred", "migration.json", "input Migration credential file")
	out := fs.String("out", "lox.json", "output Lox credential file")
	fs.Parse(args)

	iss, cfg, err := loadIssuer(*state)
	if err != nil {
		return err
	}
	var lox LoxCredBlob
	if err := readJSON(*loxFile, &lox); err != nil {
		return err
	}
	var mig MigrationCredBlob
	if err := readJSON(*migFile, &mig); err != nil {
		return err
	}
	req, clientState, err := client.RequestMigration(cfg.Keys.LoxPub, cfg.Keys.MigrationPub, lox.MAC, lox.Attrs, mig.MAC, mig.Attrs, rand.Reader)
	if err != nil {
		return err
	}
	resp, err := iss.HandleMigration(req, rand.Reader)
	if err != nil {
		return err
	}
	mac, attrs, err := client.HandleMigrationResponse(clientState, resp, cfg.Keys.LoxPub)
	if err != nil {
		return err
	}
	return writeJSON(*out, LoxCredBlob{MAC: mac, Attrs: attrs})
}

func cmdLevelUp(args []string) error {
	fs := flag.NewFlagSet("level-up", flag.ExitOnError)
	state := fs.String("state", "issuer.json", "issuer config file")
	credFile := fs.String("cred", "lox.json", "input Lox credential file")
	levelSinceDay := fs.Uint("level-since-day", 0, "day this Lox credential's level_since records")
	out := fs.String("out", "lox.json", "output Lox credential file")
	fs.Parse(args)

	iss, cfg, err := loadIssuer(*state)
	if err != nil {
		return err
	}
	var lox LoxCredBlob
	if err := readJSON(*credFile, &lox); err != nil {
		return err
	}
	bucketID, _, err := cred.UnpackBucket(lox.Attrs.Bucket)
	if err != nil {
		return err
	}
	bucketReachMAC, bucketReachAttrs, err := iss.BucketReachabilityFor(bucketID, rand.Reader)
	if err != nil {
		return err
	}
	req, clientState, err := client.RequestLevelUp(cfg.Keys.LoxPub, cfg.Keys.BucketReachPub, lox.MAC, lox.Attrs, bucketReachMAC, bucketReachAttrs, cfg.Today, uint32(*levelSinceDay), rand.Reader)
	if err != nil {
		return err
	}
	resp, err := iss.HandleLevelUp(req, rand.Reader)
	if err != nil {
		return err
	}
	mac, attrs, err := client.HandleLevelUpResponse(clientState, resp, cfg.Keys.LoxPub)
	if err != nil {
		return err
	}
	return writeJSON(*out, LoxCredBlob{MAC: mac, Attrs: attrs})
}

func cmdIssueInvite(args []string) error {
	fs := flag.NewFlagSet("issue-invite", flag.ExitOnError)
	state := fs.String("state", "issuer.json", "issuer config file")
	credFile := fs.String("cred", "lox.json", "input Lox credential file")
	outLox := fs.String("out-lox", "lox.json", "output updated Lox credential file")
	outInvite := fs.String("out-invite", "invitation.json", "output minted Invitation credential file")
	fs.Parse(args)

	iss, cfg, err := loadIssuer(*state)
	if err != nil {
		return err
	}
	var lox LoxCredBlob
	if err := readJSON(*credFile, &lox); err != nil {
		return err
	}
	bucketID, _, err := cred.UnpackBucket(lox.Attrs.Bucket)
	if err != nil {
		return err
	}
	bucketReachMAC, bucketReachAttrs, err := iss.BucketReachabilityFor(bucketID, rand.Reader)
	if err != nil {
		return err
	}
	req, clientState, err := client.RequestIssueInvite(cfg.Keys.LoxPub, cfg.Keys.BucketReachPub, lox.MAC, lox.Attrs, bucketReachMAC, bucketReachAttrs, rand.Reader)
	if err != nil {
		return err
	}
	resp, err := iss.HandleIssueInvite(req, rand.Reader)
	if err != nil {
		return err
	}
	newLoxMAC, newLoxAttrs, invMAC, invAttrs, err := client.HandleIssueInviteResponse(clientState, resp, cfg.Keys.LoxPub, cfg.Keys.InvitationPub)
	if err != nil {
		return err
	}
	if err := writeJSON(*outLox, LoxCredBlob{MAC: newLoxMAC, Attrs: newLoxAttrs}); err != nil {
		return err
	}
	return writeJSON(*outInvite, InvitationCredBlob{MAC: invMAC, Attrs: invAttrs})
}

func cmdRedeemInvite(args []string) error {
	fs := flag.NewFlagSet("redeem-invite", flag.ExitOnError)
	state := fs.String("state", "issuer.json", "issuer config file")
	credFile := fs.String("invite-cred", "invitation.json", "input Invitation credential file")
	dateDay := fs.Uint("date-day", 0, "day this Invitation credential's date records")
	out := fs.String("out", "lox.json", "output Lox credential file")
	fs.Parse(args)

	iss, cfg, err := loadIssuer(*state)
	if err != nil {
		return err
	}
	var inv InvitationCredBlob
	if err := readJSON(*credFile, &inv); err != nil {
		return err
	}
	req, clientState, err := client.RequestRedeemInvite(cfg.Keys.InvitationPub, inv.MAC, inv.Attrs, cfg.Today, uint32(*dateDay), rand.Reader)
	if err != nil {
		return err
	}
	resp, err := iss.HandleRedeemInvite(req, rand.Reader)
	if err != nil {
		return err
	}
	mac, attrs, err := client.HandleRedeemInviteResponse(clientState, resp, cfg.Keys.LoxPub)
	if err != nil {
		return err
	}
	return writeJSON(*out, LoxCredBlob{MAC: mac, Attrs: attrs})
}

func cmdCheckBlockage(args []string) error {
	fs := flag.NewFlagSet("check-blockage", flag.ExitOnError)
	state := fs.String("state", "issuer.json", "issuer config file")
	credFile := fs.String("cred", "lox.json", "input Lox credential file")
	out := fs.String("out", "migration.json", "output Migration credential file")
	fs.Parse(args)

	iss, cfg, err := loadIssuer(*state)
	if err != nil {
		return err
	}
	var lox LoxCredBlob
	if err := readJSON(*credFile, &lox); err != nil {
		return err
	}
	req, clientState, err := client.RequestCheckBlockage(cfg.Keys.LoxPub, lox.MAC, lox.Attrs, rand.Reader)
	if err != nil {
		return err
	}
	resp, err := iss.HandleCheckBlockage(req, rand.Reader)
	if err != nil {
		return err
	}
	mac, attrs, err := client.HandleCheckBlockageResponse(clientState, resp, cfg.Keys.MigrationKeyPub)
	if err != nil {
		return err
	}
	return writeJSON(*out, MigrationCredBlob{MAC: mac, Attrs: attrs})
}

func cmdBlockageMigrate(args []string) error {
	fs := flag.NewFlagSet("blockage-migrate", flag.ExitOnError)
	state := fs.String("state", "issuer.json", "issuer config file")
	loxFile := fs.String("lox-cred", "lox.json", "input Lox credential file")
	migFile := fs.String("mig-cred", "migration.json", "input Migration credential file")
	out := fs.String("out", "lox.json", "output Lox credential file")
	fs.Parse(args)

	iss, cfg, err := loadIssuer(*state)
	if err != nil {
		return err
	}
	var lox LoxCredBlob
	if err := readJSON(*loxFile, &lox); err != nil {
		return err
	}
	var mig MigrationCredBlob
	if err := readJSON(*migFile, &mig); err != nil {
		return err
	}
	req, clientState, err := client.RequestBlockageMigration(cfg.Keys.LoxPub, cfg.Keys.MigrationPub, lox.MAC, lox.Attrs, mig.MAC, mig.Attrs, rand.Reader)
	if err != nil {
		return err
	}
	resp, err := iss.HandleBlockageMigration(req, rand.Reader)
	if err != nil {
		return err
	}
	mac, attrs, err := client.HandleBlockageMigrationResponse(clientState, resp, cfg.Keys.LoxPub)
	if err != nil {
		return err
	}
	return writeJSON(*out, LoxCredBlob{MAC: mac, Attrs: attrs})
}
