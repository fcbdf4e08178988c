// Package server assembles the liftlog HTTP API.
//
// # Request Pipeline
//
// Protected routes pass through a statically composed chain before reaching
// their handler:
//
//	auth.TokenValidation -> auth.Policy.Enforce -> API mux
//
// The login and health endpoints are mounted outside the chain: health is
// public and login creates tokens rather than consuming them.
//
// # Endpoints
//
//	POST   /api/login                credential login, issues a bearer token
//	GET    /health                   liveness probe
//	GET    /api/me                   echo the authenticated principal
//	GET    /api/exercises            list the exercise catalog
//	POST   /api/exercises            create an exercise          (ADMIN)
//	GET    /api/exercises/{id}       fetch an exercise
//	PUT    /api/exercises/{id}       update an exercise          (ADMIN)
//	DELETE /api/exercises/{id}       delete an exercise          (ADMIN)
//	GET    /api/workouts             list own workouts
//	POST   /api/workouts             log a workout
//	GET    /api/workouts/{id}        fetch a workout             (owner or ADMIN)
//	PUT    /api/workouts/{id}        update a workout            (owner or ADMIN)
//	DELETE /api/workouts/{id}        delete a workout            (owner or ADMIN)
//	GET    /api/users                list users                  (ADMIN)
//	POST   /api/users                create a user               (ADMIN)
//	GET    /api/users/{username}     fetch a user                (ADMIN)
//	PUT    /api/users/{username}     update roles/enabled        (ADMIN)
//	DELETE /api/users/{username}     delete a user               (ADMIN)
//
// Role gates come from the route policy (default table in server.go,
// overridable via auth.policy_path); ownership of individual workouts is
// checked in the handlers since the policy works on routes, not rows.
package server
