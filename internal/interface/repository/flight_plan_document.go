package repository

import (
	"encoding/hex"
	"errors"
	"time"

	"flightplan-service/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrMalformedDocument is returned when a stored flight plan cannot be mapped
// back onto entity.FlightPlan.
var ErrMalformedDocument = errors.New("malformed flight plan document")

// flightPlanDocument is the stored shape of a flight plan and the only place
// the collection's field names are spelled out. Create, read and update all
// go through it. FlightPlanID is omitted when empty so an update can $set the
// document without touching the id.
type flightPlanDocument struct {
	FlightPlanID     string    `bson:"flight_plan_id,omitempty"`
	Altitude         int       `bson:"altitude"`
	Airspeed         int       `bson:"airspeed"`
	AircraftID       string    `bson:"aircraft_identification"`
	AircraftType     string    `bson:"aircraft_type"`
	ArrivalAirport   string    `bson:"arrival_airport"`
	FlightType       string    `bson:"flight_type"`
	DepartureAirport string    `bson:"departing_airport"`
	DepartureTime    time.Time `bson:"departure_time"`
	ArrivalTime      time.Time `bson:"estimated_arrival_time"`
	Route            string    `bson:"route"`
	Remarks          string    `bson:"remarks"`
	FuelHours        int       `bson:"fuel_hours"`
	FuelMinutes      int       `bson:"fuel_minutes"`
	NumberOnBoard    int       `bson:"number_onboard"`
}

// fieldFlightPlanID is the lookup key of every by-id operation
const fieldFlightPlanID = "flight_plan_id"

func toDocument(id string, p entity.FlightPlan) flightPlanDocument {
	return flightPlanDocument{
		FlightPlanID:     id,
		Altitude:         p.Altitude,
		Airspeed:         p.Airspeed,
		AircraftID:       p.AircraftID,
		AircraftType:     p.AircraftType,
		ArrivalAirport:   p.ArrivalAirport,
		FlightType:       p.FlightType,
		DepartureAirport: p.DepartureAirport,
		DepartureTime:    normalizeTime(p.DepartureTime),
		ArrivalTime:      normalizeTime(p.ArrivalTime),
		Route:            p.Route,
		Remarks:          p.Remarks,
		FuelHours:        p.FuelHours,
		FuelMinutes:      p.FuelMinutes,
		NumberOnBoard:    p.NumberOnBoard,
	}
}

func (d flightPlanDocument) toEntity() entity.FlightPlan {
	return entity.FlightPlan{
		ID:               d.FlightPlanID,
		AircraftID:       d.AircraftID,
		AircraftType:     d.AircraftType,
		Airspeed:         d.Airspeed,
		Altitude:         d.Altitude,
		FlightType:       d.FlightType,
		FuelHours:        d.FuelHours,
		FuelMinutes:      d.FuelMinutes,
		DepartureTime:    normalizeTime(d.DepartureTime),
		ArrivalTime:      normalizeTime(d.ArrivalTime),
		DepartureAirport: d.DepartureAirport,
		ArrivalAirport:   d.ArrivalAirport,
		Route:            d.Route,
		Remarks:          d.Remarks,
		NumberOnBoard:    d.NumberOnBoard,
	}
}

// normalizeTime matches BSON datetime precision
func normalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// newFlightPlanID returns 32 lowercase hex characters from a random UUID
func newFlightPlanID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}
