package model

import (
    "strings"
    "time"
)

// Channel identifies one of the two independent seat pools that share a
// trip's total capacity.  Online seats are sold through self-service
// checkout (and therefore pass through the hold flow), offline seats are
// sold directly by the conductor to walk-up passengers.
type Channel string

const (
    ChannelOnline  Channel = "online"  // self-service sales with a checkout hold
    ChannelOffline Channel = "offline" // direct conductor sales, no hold required
)

// Channels lists all valid sales channels.  The set is fixed: capacity is
// split between the two pools at trip creation and never rebalanced.
var Channels = []Channel{ChannelOnline, ChannelOffline}

// ParseChannel normalizes raw input into a Channel.  It returns false when
// the input does not name a known channel.
func ParseChannel(raw string) (Channel, bool) {
    switch Channel(strings.ToLower(strings.TrimSpace(raw))) {
    case ChannelOnline:
        return ChannelOnline, true
    case ChannelOffline:
        return ChannelOffline, true
    }
    return "", false
}

// Trip describes the seat inventory of a single scheduled departure.  The
// total seat count and the per-channel split are supplied at creation time
// by the scheduling collaborator (vehicle assignment, route planning) and
// are immutable afterwards.  Seat numbers run from 1 to TotalSeats.
//
// Fields:
//  ID              – primary key identifier of the trip.
//  TotalSeats      – number of physical seats on the vehicle.
//  ChannelCapacity – seats allotted to each sales channel; the sum never
//                    exceeds TotalSeats.
//  CreatedAt       – timestamp of creation.
type Trip struct {
    ID              uint64             // trips.id
    TotalSeats      uint32             // trips.total_seats
    ChannelCapacity map[Channel]uint32 // trips.online_capacity / trips.offline_capacity
    CreatedAt       time.Time          // trips.created_at
}
