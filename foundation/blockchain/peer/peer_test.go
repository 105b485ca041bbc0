package peer_test

import (
	"encoding/json"
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
)

func Test_CRUD(t *testing.T) {
	type table struct {
		name  string
		peers []peer.Peer
	}

	tt := []table{
		{
			name: "basic",
			peers: []peer.Peer{
				peer.New("host3:5000", "id3", "key3"),
				peer.New("host1:5000", "id1", "key1"),
				peer.New("host2:5000", "id2", "key2"),
			},
		},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			ps := peer.NewPeerSet()

			for _, peer := range tst.peers {
				if !ps.Upsert(peer) {
					t.Fatalf("Test %s:\tShould report a new address for %s.", tst.name, peer.Host)
				}
			}

			peers := ps.Copy("")
			if len(peers) != len(tst.peers) {
				t.Logf("Test %s:\tgot: %d", tst.name, len(peers))
				t.Logf("Test %s:\texp: %d", tst.name, len(tst.peers))
				t.Fatalf("Test %s:\tShould get back the right peers.", tst.name)
			}

			if peers[0].Host != "host1:5000" || peers[2].Host != "host3:5000" {
				t.Fatalf("Test %s:\tShould get back the peers sorted by address.", tst.name)
			}

			peers = ps.Copy("host2:5000")
			if len(peers) != len(tst.peers)-1 {
				t.Logf("Test %s:\tgot: %d", tst.name, len(peers))
				t.Logf("Test %s:\texp: %d", tst.name, len(tst.peers)-1)
				t.Fatalf("Test %s:\tShould get back the right peers.", tst.name)
			}

			if ps.Upsert(peer.New("host1:5000", "id9", "key9")) {
				t.Fatalf("Test %s:\tShould report an existing address.", tst.name)
			}

			got, exists := ps.Get("host1:5000")
			if !exists || got.ID != "id9" || ps.Len() != len(tst.peers) {
				t.Logf("Test %s:\tgot: %+v", tst.name, got)
				t.Fatalf("Test %s:\tShould overwrite the peer at the same address.", tst.name)
			}

			ps.Remove("host1:5000")
			if _, exists := ps.Get("host1:5000"); exists {
				t.Fatalf("Test %s:\tShould be able to remove a peer.", tst.name)
			}
		}

		t.Run(tst.name, f)
	}
}

func Test_MapEncoding(t *testing.T) {
	ps := peer.NewPeerSet()
	ps.Upsert(peer.New("host1:5000", "id1", "key1"))

	data, err := json.Marshal(ps.Map())
	if err != nil {
		t.Fatalf("Should be able to marshal the peer map: %s", err)
	}

	exp := `{"host1:5000":{"uuid":"id1","key":"key1"}}`
	if string(data) != exp {
		t.Logf("got: %s", data)
		t.Logf("exp: %s", exp)
		t.Fatalf("Should get back the address keyed wire format.")
	}
}
