// Package dictionarytest has a small FIX 4.4 data dictionary and helpers for
// building wire lines in tests.
package dictionarytest

import (
	"strings"

	"fix2json/internal/dictionary"
)

// XML is a trimmed FIX 4.4 dictionary: a header with a repeating group, a
// component nesting a group inside a group, and three messages.
const XML = `<?xml version="1.0" encoding="UTF-8"?>
<fix type="FIX" major="4" minor="4" servicepack="0">
  <header>
    <field name="BeginString" required="Y"/>
    <field name="BodyLength" required="Y"/>
    <field name="MsgType" required="Y"/>
    <field name="SenderCompID" required="Y"/>
    <field name="TargetCompID" required="Y"/>
    <field name="MsgSeqNum" required="Y"/>
    <field name="SendingTime" required="Y"/>
    <group name="NoHops" required="N">
      <field name="HopCompID" required="N"/>
      <field name="HopSendingTime" required="N"/>
    </group>
  </header>
  <trailer>
    <field name="CheckSum" required="Y"/>
  </trailer>
  <messages>
    <message name="Heartbeat" msgtype="0" msgcat="admin">
      <field name="TestReqID" required="N"/>
    </message>
    <message name="NewOrderSingle" msgtype="D" msgcat="app">
      <field name="ClOrdID" required="Y"/>
      <component name="Parties" required="N"/>
      <component name="Instrument" required="Y"/>
      <field name="Side" required="Y"/>
      <field name="TransactTime" required="Y"/>
      <field name="OrderQty" required="N"/>
      <field name="OrdType" required="Y"/>
      <field name="Price" required="N"/>
    </message>
    <message name="MarketDataSnapshotFullRefresh" msgtype="W" msgcat="app">
      <field name="MDReqID" required="N"/>
      <component name="Instrument" required="Y"/>
      <group name="NoMDEntries" required="Y">
        <field name="MDEntryType" required="Y"/>
        <field name="MDEntryPx" required="N"/>
        <field name="MDEntrySize" required="N"/>
        <component name="Parties" required="N"/>
      </group>
    </message>
  </messages>
  <components>
    <component name="Instrument">
      <field name="Symbol" required="N"/>
    </component>
    <component name="Parties">
      <group name="NoPartyIDs" required="N">
        <field name="PartyID" required="N"/>
        <field name="PartyIDSource" required="N"/>
        <field name="PartyRole" required="N"/>
        <component name="PtysSubGrp" required="N"/>
      </group>
    </component>
    <component name="PtysSubGrp">
      <group name="NoPartySubIDs" required="N">
        <field name="PartySubID" required="N"/>
        <field name="PartySubIDType" required="N"/>
      </group>
    </component>
  </components>
  <fields>
    <field number="8" name="BeginString" type="STRING"/>
    <field number="9" name="BodyLength" type="LENGTH"/>
    <field number="10" name="CheckSum" type="STRING"/>
    <field number="11" name="ClOrdID" type="STRING"/>
    <field number="34" name="MsgSeqNum" type="SEQNUM"/>
    <field number="35" name="MsgType" type="STRING">
      <value enum="0" description="HEARTBEAT"/>
      <value enum="D" description="ORDER_SINGLE"/>
      <value enum="W" description="MARKET_DATA_SNAPSHOT_FULL_REFRESH"/>
    </field>
    <field number="38" name="OrderQty" type="QTY"/>
    <field number="40" name="OrdType" type="CHAR">
      <value enum="1" description="Market"/>
      <value enum="2" description="Limit"/>
    </field>
    <field number="44" name="Price" type="PRICE"/>
    <field number="49" name="SenderCompID" type="STRING"/>
    <field number="52" name="SendingTime" type="UTCTIMESTAMP"/>
    <field number="54" name="Side" type="CHAR">
      <value enum="1" description="BUY"/>
      <value enum="2" description="SELL"/>
    </field>
    <field number="55" name="Symbol" type="STRING"/>
    <field number="56" name="TargetCompID" type="STRING"/>
    <field number="60" name="TransactTime" type="UTCTIMESTAMP"/>
    <field number="112" name="TestReqID" type="STRING"/>
    <field number="262" name="MDReqID" type="STRING"/>
    <field number="268" name="NoMDEntries" type="NUMINGROUP"/>
    <field number="269" name="MDEntryType" type="CHAR">
      <value enum="0" description="BID"/>
      <value enum="1" description="OFFER"/>
    </field>
    <field number="270" name="MDEntryPx" type="PRICE"/>
    <field number="271" name="MDEntrySize" type="QTY"/>
    <field number="447" name="PartyIDSource" type="CHAR"/>
    <field number="448" name="PartyID" type="STRING"/>
    <field number="452" name="PartyRole" type="INT">
      <value enum="1" description="EXECUTING_FIRM"/>
      <value enum="3" description="CLIENT_ID"/>
    </field>
    <field number="453" name="NoPartyIDs" type="NUMINGROUP"/>
    <field number="523" name="PartySubID" type="STRING"/>
    <field number="627" name="NoHops" type="NUMINGROUP"/>
    <field number="628" name="HopCompID" type="STRING"/>
    <field number="629" name="HopSendingTime" type="UTCTIMESTAMP"/>
    <field number="802" name="NoPartySubIDs" type="NUMINGROUP"/>
    <field number="803" name="PartySubIDType" type="INT"/>
  </fields>
</fix>
`

// SOH is the FIX field separator.
const SOH = "\x01"

// Load parses XML.
func Load() (*dictionary.Dictionary, error) {
	return dictionary.Load(strings.NewReader(XML))
}

// Must panics on a load error.
func Must(dict *dictionary.Dictionary, err error) *dictionary.Dictionary {
	if err != nil {
		panic(err)
	}
	return dict
}

// Line joins tag=value pairs with SOH, including the trailing separator
// found on the wire.
func Line(pairs ...string) string {
	return strings.Join(pairs, SOH) + SOH
}

// NewOrderSingle is a D message with two parties; the first carries two
// sub IDs and the second one.
func NewOrderSingle() string {
	return Line(
		"8=FIX.4.4", "9=178", "35=D", "49=BUYSIDE", "56=SELLSIDE", "34=2",
		"52=20240102-10:00:00.000",
		"11=ORD-1",
		"453=2",
		"448=FIRM-A", "447=D", "452=1",
		"802=2", "523=DESK-1", "803=1", "523=TRADER-7", "803=2",
		"448=CLIENT-B", "447=D", "452=3",
		"802=1", "523=ACCT-9", "803=3",
		"55=AAPL", "54=1", "60=20240102-10:00:00.000", "38=100", "40=2", "44=101.25",
		"10=123",
	)
}
