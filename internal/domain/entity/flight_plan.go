// internal/domain/entity/flight_plan.go
package entity

import (
	"time"
)

// FlightPlan is a filed flight plan as exchanged with clients
type FlightPlan struct {
	ID               string    `json:"flight_plan_id"`
	AircraftID       string    `json:"aircraft_identification"`
	AircraftType     string    `json:"aircraft_type"`
	Airspeed         int       `json:"airspeed"`
	Altitude         int       `json:"altitude"`
	FlightType       string    `json:"flight_type"`
	FuelHours        int       `json:"fuel_hours"`
	FuelMinutes      int       `json:"fuel_minutes"`
	DepartureTime    time.Time `json:"departure_time"`
	ArrivalTime      time.Time `json:"estimated_arrival_time"`
	DepartureAirport string    `json:"departing_airport"`
	ArrivalAirport   string    `json:"arrival_airport"`
	Route            string    `json:"route"`
	Remarks          string    `json:"remarks"`
	NumberOnBoard    int       `json:"number_onboard"`
}

// TimeEnroute returns the planned time between departure and arrival
func (p FlightPlan) TimeEnroute() time.Duration {
	return p.ArrivalTime.Sub(p.DepartureTime)
}
