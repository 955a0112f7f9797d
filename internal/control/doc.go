// Package control provides the heater controllers used by the thermal
// stepper and the analytic tuner for the PID gains.
//
// Controllers turn a setpoint and a measured temperature into a raw power
// command in watts:
//
//   - [PID]: PID with a decaying integral and a smoothed output
//   - [BangBang]: on/off control with a hysteresis band
//   - [Manual]: fixed open-loop output
//
// # Usage
//
//	tuning := control.Tune(control.Plant{Width: 0.25, Height: 0.25, ThermalMass: 457}, false)
//	pid := control.NewPID(tuning.Kp, tuning.Ki, tuning.Kd)
//	watts := pid.Update(60, measured, 0.04)
//
// [PID] supports live tuning through GetParams and SetParam.
package control
